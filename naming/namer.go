// Package naming derives output file names from input names and resolves
// collisions deterministically.
package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Suffix appended to every derived output name.
const Suffix = "_scanned"

// ExistsFunc answers whether a candidate name is already taken.  The namer
// is a pure function over this check and never mutates the destination.
type ExistsFunc func(name string) (bool, error)

// DeriveName appends Suffix to base and, while the result collides, appends
// an increasing counter starting at 2:
//
//	doc → doc_scanned → doc_scanned2 → doc_scanned3 → …
//
// ext, when non-empty, must include the leading dot and is carried on every
// candidate.  Deterministic for a fixed destination snapshot.
func DeriveName(base, ext string, exists ExistsFunc) (string, error) {
	name := base + Suffix + ext
	taken, err := exists(name)
	if err != nil {
		return "", fmt.Errorf("naming: check %q: %w", name, err)
	}
	for counter := 2; taken; counter++ {
		name = fmt.Sprintf("%s%s%d%s", base, Suffix, counter, ext)
		taken, err = exists(name)
		if err != nil {
			return "", fmt.Errorf("naming: check %q: %w", name, err)
		}
	}
	return name, nil
}

// DirExists returns an ExistsFunc backed by a filesystem directory.
func DirExists(dir string) ExistsFunc {
	return func(name string) (bool, error) {
		_, err := os.Stat(filepath.Join(dir, name))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
}

// SplitBase splits a file path into the base name and extension the namer
// consumes: "in/doc.pdf" → ("doc", ".pdf").
func SplitBase(path string) (base, ext string) {
	name := filepath.Base(path)
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}
