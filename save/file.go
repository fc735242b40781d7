package save

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/maidenless/sl2edit/bnd"
)

// LoadContainer reads and parses a save container file.
func LoadContainer(path string) (*bnd.Container, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", path)
	}
	c, err := bnd.Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse %q", path)
	}
	return c, nil
}

// WriteContainerAtomically writes buf next to path and renames it into
// place, so the game never observes a half-written container.
func WriteContainerAtomically(path string, buf []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temp file in %q", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrapf(err, "Failed to write %q", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "Failed to close %q", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "Failed to replace %q", path)
	}
	return nil
}
