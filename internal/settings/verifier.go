// Package settings verifies the deployment before a sync run and prepares
// the target directories.
package settings

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/steveyegge/snipsync/internal/sync"
)

// DefaultDirMode is applied to target directories that are created or found
// unwritable.
const DefaultDirMode os.FileMode = 0777

// Options configures a Verifier. The zero value is usable.
type Options struct {
	// Fs holds the target directories (default: OS filesystem).
	Fs afero.Fs

	// DirMode for created or repaired directories (default: DefaultDirMode).
	DirMode os.FileMode

	// Logger for directory changes (default: stderr logger).
	Logger *log.Logger
}

// Verifier implements sync.Verifier.
type Verifier struct {
	cfg     sync.ConfigProvider
	fs      afero.Fs
	dirMode os.FileMode
	logger  *log.Logger
}

var _ sync.Verifier = (*Verifier)(nil)

// NewVerifier creates a Verifier reading cfg. opts may be nil.
func NewVerifier(cfg sync.ConfigProvider, opts *Options) *Verifier {
	if opts == nil {
		opts = &Options{}
	}
	v := &Verifier{
		cfg:     cfg,
		fs:      opts.Fs,
		dirMode: opts.DirMode,
		logger:  opts.Logger,
	}
	if v.fs == nil {
		v.fs = afero.NewOsFs()
	}
	if v.dirMode == 0 {
		v.dirMode = DefaultDirMode
	}
	if v.logger == nil {
		v.logger = log.New(os.Stderr, "[settings] ", log.LstdFlags)
	}
	return v
}

// VerifySettings checks that templates are saved as files and that both base
// paths are configured and exist. It then creates missing target directories
// and makes unwritable ones writable.
//
// Configuration problems come back as *sync.VerificationError. Failing to
// create or chmod a target directory is a *sync.FatalError.
func (v *Verifier) VerifySettings() error {
	if !v.cfg.SaveTemplateFiles() {
		return &sync.VerificationError{
			Message: "Save templates as files must be enabled (save_tmpl_files)",
		}
	}

	bases := []struct {
		label string
		key   string
		path  string
	}{
		{"Global variable", "globalvar_file_basepath", v.cfg.GlobalVarBasePath()},
		{"Snippet", "snippet_file_basepath", v.cfg.SnippetBasePath()},
	}
	for _, b := range bases {
		if b.path == "" {
			return &sync.VerificationError{
				Message: fmt.Sprintf("%s file basepath not defined (%s)", b.label, b.key),
			}
		}
		info, err := v.fs.Stat(b.path)
		if err != nil || !info.IsDir() {
			return &sync.VerificationError{
				Message: fmt.Sprintf("%s file basepath not found (%s)", b.label, b.path),
			}
		}
	}

	for _, target := range sync.Targets(v.cfg) {
		if err := v.ensureDir(target.Dir); err != nil {
			return err
		}
	}
	return nil
}

// ensureDir creates dir when absent and makes it writable.
func (v *Verifier) ensureDir(dir string) error {
	info, err := v.fs.Stat(dir)
	if os.IsNotExist(err) {
		if err := v.fs.Mkdir(dir, v.dirMode); err != nil {
			return &sync.FatalError{Op: "could not create directory", Path: dir, Err: err}
		}
		v.logger.Printf("Created %s", dir)
		info, err = v.fs.Stat(dir)
	}
	if err != nil {
		return &sync.FatalError{Op: "could not stat directory", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &sync.FatalError{Op: "not a directory", Path: dir}
	}

	if writable(v.fs, dir, info) {
		return nil
	}

	if err := v.fs.Chmod(dir, v.dirMode); err != nil {
		return &sync.FatalError{Op: "could not make directory writable", Path: dir, Err: err}
	}
	v.logger.Printf("Changed mode of %s to %#o", dir, v.dirMode)

	info, err = v.fs.Stat(dir)
	if err != nil || !writable(v.fs, dir, info) {
		return &sync.FatalError{Op: "directory still not writable", Path: dir, Err: err}
	}
	return nil
}

// writable reports whether dir can be written. The OS filesystem is checked
// with access(2) where available; other filesystems fall back to the owner
// write bit.
func writable(fs afero.Fs, dir string, info os.FileInfo) bool {
	if _, ok := fs.(*afero.OsFs); ok {
		return osWritable(dir, info)
	}
	return info.Mode().Perm()&0200 != 0
}
