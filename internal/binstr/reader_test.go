package binstr_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"wiivcinjector/internal/binstr"
)

func cursor(t *testing.T, r io.Seeker) int64 {
	t.Helper()
	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	return pos
}

func TestReadString(t *testing.T) {
	src := bytes.NewReader([]byte{0x41, 0x42, 0x00, 0x43})
	s, err := binstr.ReadString(src, 0, false)
	require.NoError(t, err)
	require.Equal(t, "AB", s)
	require.Equal(t, int64(3), cursor(t, src))
}

func TestReadStringPeek(t *testing.T) {
	data := append([]byte(strings.Repeat("x", 1000)), 0, 'y', 0)
	src := bytes.NewReader(data)
	_, err := src.Seek(1001, io.SeekStart)
	require.NoError(t, err)

	s, err := binstr.ReadString(src, 0, true)
	require.NoError(t, err)
	require.Len(t, s, 1000)
	require.Equal(t, int64(1001), cursor(t, src))

	s, err = binstr.ReadString(src, 1001, false)
	require.NoError(t, err)
	require.Equal(t, "y", s)
	require.Equal(t, int64(1003), cursor(t, src))
}

func TestReadStringEmpty(t *testing.T) {
	src := bytes.NewReader([]byte{'A', 0x00, 0x00})
	s, err := binstr.ReadString(src, 1, false)
	require.NoError(t, err)
	require.Equal(t, "", s)
	require.Equal(t, int64(2), cursor(t, src))
}

func TestReadStringRoundTrip(t *testing.T) {
	for _, want := range []string{"RMGE01", "Super Mario Galaxy", "a b c ~!@#"} {
		data := append([]byte{0xEE, 0xEE}, []byte(want)...)
		data = append(data, 0)
		s, err := binstr.ReadString(bytes.NewReader(data), 2, false)
		require.NoError(t, err)
		require.Equal(t, want, s)
	}
}

func TestReadStringGB2312(t *testing.T) {
	src := bytes.NewReader([]byte{0xD6, 0xD0, 0xCE, 0xC4, 0x00})
	r := binstr.NewReader(0)
	e, err := r.ReadEntry(src, 0, true)
	require.NoError(t, err)
	require.Equal(t, "中文", e.Text)
	require.Equal(t, binstr.DoubleByteCJK, e.Encoding)
	require.Equal(t, 4, e.Length)
	require.Equal(t, int64(0), e.Offset)
}

func TestReadStringOutOfBounds(t *testing.T) {
	src := bytes.NewReader([]byte{'A', 0})
	_, err := src.Seek(1, io.SeekStart)
	require.NoError(t, err)

	_, err = binstr.ReadString(src, 3, false)
	require.ErrorIs(t, err, binstr.ErrOutOfBounds)
	require.Equal(t, int64(1), cursor(t, src))

	_, err = binstr.ReadString(src, -1, true)
	require.ErrorIs(t, err, binstr.ErrOutOfBounds)
	require.Equal(t, int64(1), cursor(t, src))
}

func TestReadStringUnterminated(t *testing.T) {
	src := bytes.NewReader([]byte("no terminator"))
	_, err := binstr.ReadString(src, 0, false)
	require.ErrorIs(t, err, binstr.ErrUnterminatedRun)
	require.Equal(t, int64(0), cursor(t, src))

	// reading at the very end finds no terminator either
	_, err = binstr.ReadString(src, src.Size(), true)
	require.ErrorIs(t, err, binstr.ErrUnterminatedRun)
}

func TestReadStringMaxLength(t *testing.T) {
	data := append([]byte(strings.Repeat("z", 600)), 0)
	r := binstr.NewReader(512)
	_, err := r.ReadString(bytes.NewReader(data), 0, false)
	require.ErrorIs(t, err, binstr.ErrUnterminatedRun)

	r = binstr.NewReader(600)
	s, err := r.ReadString(bytes.NewReader(data), 0, false)
	require.NoError(t, err)
	require.Len(t, s, 600)
}

func TestReadTable(t *testing.T) {
	var buf bytes.Buffer
	// pointer table at 0, strings after it
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{12, 16, 12}))
	buf.WriteString("abc\x00")
	buf.Write([]byte{0xD6, 0xD0, 0x00})
	src := bytes.NewReader(buf.Bytes())

	r := binstr.NewReader(binstr.DefaultMaxLength)
	entries, err := r.ReadTable(src, 0, 3, binary.BigEndian)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "abc", entries[0].Text)
	require.Equal(t, int64(12), entries[0].Offset)
	require.Equal(t, "中", entries[1].Text)
	require.Equal(t, binstr.DoubleByteCJK, entries[1].Encoding)
	require.Equal(t, "abc", entries[2].Text)
	require.Equal(t, int64(0), cursor(t, src))
}

func TestReadTableErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint32{100}))
	src := bytes.NewReader(buf.Bytes())
	r := binstr.NewReader(0)

	_, err := r.ReadTable(src, 0, 1, binary.LittleEndian)
	require.ErrorIs(t, err, binstr.ErrOutOfBounds)

	_, err = r.ReadTable(src, 0, 2, binary.LittleEndian)
	require.ErrorIs(t, err, binstr.ErrOutOfBounds)

	_, err = r.ReadTable(src, 0, -1, binary.LittleEndian)
	require.Error(t, err)
}
