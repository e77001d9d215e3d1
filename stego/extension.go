package stego

import (
	"path/filepath"
	"strings"
)

// ExtensionOf returns the extension of the file name in path, starting at
// and including its final '.'. Dots in directory names are ignored.
func ExtensionOf(path string) (string, bool) {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return "", false
	}
	return base[i:], true
}

// StemOf strips everything from the first '.' of the file name in name,
// keeping any directory part. "out/secret.tar.gz" becomes "out/secret".
func StemOf(name string) string {
	dir, file := filepath.Split(name)
	if i := strings.IndexByte(file, '.'); i >= 0 {
		file = file[:i]
	}
	return dir + file
}

// IsSafeExtension reports whether ext can be appended to a file name without
// changing its directory.
func IsSafeExtension(ext string) bool {
	return ext != "" && !strings.ContainsAny(ext, "/\\\x00")
}
