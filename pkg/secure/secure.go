//go:build !windows
// +build !windows

// Package secure provides wrappers around os file creation helpers that
// refuse to widen access to an existing path. Creating a child with a
// mode more permissive than its closest existing ancestor would leak
// whatever the ancestor's mode was meant to protect, and reports and
// rolling logs carry tenant and group identifiers. Files that already
// exist with a mode other than the requested one are refused outright.
package secure

import (
	"errors"
	"fmt"
	"os"
	"path"
	"syscall"
)

// widensAccess reports whether want grants the group or world bits
// anything that have does not already grant. Owner bits are ignored, the
// caller always owns the files it writes.
func widensAccess(have, want os.FileMode) bool {
	haveGroup, wantGroup := have&0o070, want&0o070
	haveWorld, wantWorld := have&0o007, want&0o007
	return wantGroup > haveGroup || wantWorld > haveWorld
}

// checkPermPath walks from dir upward until it finds an existing path
// element and verifies that element is a directory at least as
// permissive as perm. Elements that do not exist yet will be created by
// the caller with the requested mode, so only the existing prefix
// matters.
func checkPermPath(dir string, perm os.FileMode) error {
	if !perm.IsDir() {
		perm ^= os.ModeDir
	}

	for dir != "" {
		info, err := os.Stat(dir)
		switch {
		case err == nil && !info.IsDir():
			return &os.PathError{Op: "mkdir", Path: dir, Err: syscall.ENOTDIR}
		case err == nil:
			if widensAccess(info.Mode(), perm) {
				return fmt.Errorf(
					"path %s already exists with mode %o instead of the expected %o",
					dir, info.Mode(), perm,
				)
			}
			return nil
		case !errors.Is(err, os.ErrNotExist):
			return err
		}

		parent := path.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
	return nil
}

func checkPermFile(name string, perm os.FileMode) error {
	info, err := os.Stat(name)
	if err == nil && info.Mode() != perm {
		return fmt.Errorf(
			"file %s already exists with mode %o instead of the expected %o",
			name, info.Mode(), perm,
		)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return checkPermPath(path.Dir(name), perm)
}

// MkdirAll is os.MkdirAll, but fails if perm would grant group or world
// access that the closest existing element of path does not.
func MkdirAll(path string, perm os.FileMode) error {
	if err := checkPermPath(path, perm); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

// OpenFile is os.OpenFile, but fails if the file already exists with a
// mode other than perm, or if perm would grant group or world access
// that the existing parent directory does not.
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if err := checkPermFile(name, perm); err != nil {
		return nil, err
	}
	return os.OpenFile(name, flag, perm)
}
