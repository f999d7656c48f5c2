//go:build !unix

package linker

func isEXDEV(error) bool { return false }
