package util_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"wiivcinjector/internal/util"
)

func TestLengthString(t *testing.T) {
	tests := []struct {
		in     int64
		expect string
	}{
		{0, "0 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1024*1024 + 10*1024, "1.01 MB"},
		{4699979776, "4.38 GB"},
		{1024 * 1024 * 1024, "1 GB"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expect, util.LengthString(tt.in))
	}
}

func TestPathEquals(t *testing.T) {
	dir := t.TempDir()
	require.True(t, util.PathEquals(dir, dir+string(filepath.Separator), false))
	require.True(t, util.PathEquals(filepath.Join(dir, "a", "..", "b"), filepath.Join(dir, "b"), false))
	require.False(t, util.PathEquals(filepath.Join(dir, "a"), filepath.Join(dir, "b"), true))
	require.True(t, util.PathEquals(filepath.Join(dir, "Game.ISO"), filepath.Join(dir, "game.iso"), true))
	require.False(t, util.PathEquals(filepath.Join(dir, "Game.ISO"), filepath.Join(dir, "game.iso"), false))
	require.Equal(t, string(filepath.Separator), util.NormalizePath(string(filepath.Separator)))
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	sep := string(filepath.Separator)
	require.True(t, util.SamePath(filepath.Join(dir, "game.iso"), dir+sep+"."+sep+"game.iso"))
	require.False(t, util.SamePath(filepath.Join(dir, "game.iso"), filepath.Join(dir, "other.iso")))
	if runtime.GOOS == "windows" {
		require.True(t, util.SamePath(filepath.Join(dir, "Game.ISO"), filepath.Join(dir, "game.iso")))
	}
}
