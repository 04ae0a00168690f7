//go:build unix

package settings

import (
	"os"

	"golang.org/x/sys/unix"
)

func osWritable(dir string, _ os.FileInfo) bool {
	return unix.Access(dir, unix.W_OK) == nil
}
