// Package textutil provides small text helpers shared by the path mapper and
// the file index: title normalization, filename sanitization, and the
// conversion of a directory path into a single safe file name.
package textutil
