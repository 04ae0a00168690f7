package sync

import (
	"regexp"
	"strings"
)

var (
	illegalRun = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	edgeRun    = regexp.MustCompile(`^[._-]+|[._-]+$`)
)

// Normalize maps a filename to a store-safe identifier.
//
// The result depends only on name. It may be empty, e.g. for "...txt".
//
//	Normalize("my.snip.pet.v2.txt") // "my_snip_pet_v2"
func Normalize(name string) string {
	return TrimEdges(ReplaceIllegal(StripExtension(name)))
}

// StripExtension removes everything from the last '.' to the end.
func StripExtension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// ReplaceIllegal replaces each run of characters other than ASCII letters,
// digits, '-' and '_' with a single '_'.
func ReplaceIllegal(s string) string {
	return illegalRun.ReplaceAllString(s, "_")
}

// TrimEdges strips leading and trailing runs of '.', '-' and '_'.
func TrimEdges(s string) string {
	return edgeRun.ReplaceAllString(s, "")
}
