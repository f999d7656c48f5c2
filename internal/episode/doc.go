// Package episode identifies the episode number carried by a release filename.
//
// Extraction runs an ordered chain of rules. Each Rule pairs a group
// signature (a pattern identifying one release group's naming convention)
// with a dedicated extractor. The first rule whose signature matches governs;
// when its extractor cannot produce a number, extraction falls through to the
// default token scan rather than failing. The default scan splits the name on
// bracket and whitespace delimiters and accepts the first token made of digits
// with an optional version suffix (v2, V3).
//
// Extraction never guesses a season and never looks at sibling files. Season
// is always 1 in the returned Descriptor.
package episode
