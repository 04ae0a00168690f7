package sync

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ListFiles returns the names of the regular files directly inside dir.
//
// Subdirectories and special files are skipped. A symlink is included when
// it resolves to a regular file. The order of the result is unspecified.
//
// If dir cannot be read the error is a *FatalError.
func ListFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, &FatalError{Op: "could not open dir", Path: dir, Err: err}
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		mode := entry.Mode()
		if mode&os.ModeSymlink != 0 {
			info, err := fs.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			mode = info.Mode()
		}
		if !mode.IsRegular() {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}
