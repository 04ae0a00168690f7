//go:build !unix

package settings

import "os"

func osWritable(_ string, info os.FileInfo) bool {
	return info.Mode().Perm()&0200 != 0
}
