package util

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// LengthString formats a byte count with 1024-based units and at most two decimals.
func LengthString(length int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case length >= gb:
		return trimFloat(float64(length)/gb) + " GB"
	case length >= mb:
		return trimFloat(float64(length)/mb) + " MB"
	case length >= kb:
		return trimFloat(float64(length)/kb) + " KB"
	}
	return strconv.FormatInt(length, 10) + " Bytes"
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// NormalizePath returns the absolute, cleaned form of path without trailing separators.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	trimmed := strings.TrimRight(abs, `/\`)
	if trimmed == "" || strings.HasSuffix(trimmed, ":") {
		return abs
	}
	return trimmed
}

// PathEquals compares two paths after normalisation.
func PathEquals(path1, path2 string, caseInsensitive bool) bool {
	p1, p2 := NormalizePath(path1), NormalizePath(path2)
	if caseInsensitive {
		return strings.EqualFold(p1, p2)
	}
	return p1 == p2
}

// SamePath compares paths the way the host file system does:
// case-insensitively on Windows.
func SamePath(path1, path2 string) bool {
	return PathEquals(path1, path2, runtime.GOOS == "windows")
}
