package sync

import "fmt"

// FatalError marks a broken deployment: a required directory that cannot be
// opened, created or made writable. The outermost caller terminates the
// process when it sees one.
type FatalError struct {
	Op   string
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// VerificationError is a recoverable precondition failure. SyncAll reports
// it through ErrorMessage and a false result instead of an error.
type VerificationError struct {
	Message string
}

func (e *VerificationError) Error() string { return e.Message }
