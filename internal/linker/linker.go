package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDestinationExists reports a destination occupied by a different file.
var ErrDestinationExists = errors.New("destination already exists")

// linkFn is swapped by tests to simulate platform failures.
var linkFn = os.Link

// Options controls collision handling.
type Options struct {
	// Overwrite removes an existing destination file before linking.
	Overwrite bool
}

// Outcome describes what Place did.
type Outcome string

const (
	Created       Outcome = "created"
	Replaced      Outcome = "replaced"
	AlreadyLinked Outcome = "already_linked"
)

// LinkError names the file and the step that failed.
type LinkError struct {
	Op          string
	Source      string
	Destination string
	Err         error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s %q -> %q: %v", e.Op, e.Source, e.Destination, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// CrossDeviceError reports a hard link refused because source and destination
// live on different filesystems.
type CrossDeviceError struct {
	Source      string
	Destination string
	Err         error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cannot hard link across filesystems: %q -> %q (source and destination must share a filesystem): %v", e.Source, e.Destination, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a *CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Link hard-links src to dest, creating parent directories as needed.
func Link(src, dest string, opts Options) error {
	_, err := Place(src, dest, opts)
	return err
}

// Place is Link that also reports what happened at the destination.
func Place(src, dest string, opts Options) (Outcome, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", &LinkError{Op: "stat source", Source: src, Destination: dest, Err: err}
	}
	if !srcInfo.Mode().IsRegular() {
		return "", &LinkError{Op: "stat source", Source: src, Destination: dest, Err: errors.New("not a regular file")}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", &LinkError{Op: "create destination directory", Source: src, Destination: dest, Err: err}
	}

	outcome := Created
	destInfo, err := os.Lstat(dest)
	switch {
	case err == nil:
		if os.SameFile(srcInfo, destInfo) {
			return AlreadyLinked, nil
		}
		if destInfo.IsDir() {
			return "", &LinkError{Op: "link", Source: src, Destination: dest, Err: fmt.Errorf("%w: destination is a directory", ErrDestinationExists)}
		}
		if !opts.Overwrite {
			return "", &LinkError{Op: "link", Source: src, Destination: dest, Err: ErrDestinationExists}
		}
		if err := os.Remove(dest); err != nil {
			return "", &LinkError{Op: "remove existing destination", Source: src, Destination: dest, Err: err}
		}
		outcome = Replaced
	case !errors.Is(err, fs.ErrNotExist):
		return "", &LinkError{Op: "stat destination", Source: src, Destination: dest, Err: err}
	}

	if err := linkFn(src, dest); err != nil {
		if isEXDEV(err) {
			return "", &CrossDeviceError{Source: src, Destination: dest, Err: err}
		}
		if errors.Is(err, fs.ErrExist) {
			return "", &LinkError{Op: "link", Source: src, Destination: dest, Err: ErrDestinationExists}
		}
		return "", &LinkError{Op: "link", Source: src, Destination: dest, Err: err}
	}
	return outcome, nil
}
