package binstr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wiivcinjector/internal/binstr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		expect binstr.EncodingGuess
	}{
		// the scan never fails on ASCII-only input, so it passes as GB2312
		{"empty", []byte{}, binstr.DoubleByteCJK},
		{"ascii", []byte{0x41, 0x42}, binstr.DoubleByteCJK},
		{"pair", []byte{0xB0, 0xA1}, binstr.DoubleByteCJK},
		{"lead at end", []byte{0xB0}, binstr.DefaultUTF8},
		{"outside ranges", []byte{0xFF}, binstr.DefaultUTF8},
		{"lowest lead", []byte{176, 160}, binstr.DoubleByteCJK},
		{"highest lead", []byte{247, 254}, binstr.DoubleByteCJK},
		{"lead below range", []byte{175, 160}, binstr.DefaultUTF8},
		{"lead above range", []byte{248, 160}, binstr.DefaultUTF8},
		{"trail below range", []byte{176, 159}, binstr.DefaultUTF8},
		{"trail 255", []byte{176, 255}, binstr.DefaultUTF8},
		{"trail ascii", []byte{0xB0, 0x41}, binstr.DefaultUTF8},
		{"gb2312 mixed", []byte{'A', 0xD6, 0xD0, 'B', 0xCE, 0xC4}, binstr.DoubleByteCJK},
		{"utf8 hanzi", []byte("中文"), binstr.DefaultUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, binstr.Classify(tt.in))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	in := []byte{0xD6, 0xD0, 0xCE, 0xC4}
	first := binstr.Classify(in)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, binstr.Classify(in))
	}
	require.Equal(t, []byte{0xD6, 0xD0, 0xCE, 0xC4}, in)
}

func TestClassifyHeuristicMisses(t *testing.T) {
	// "é" in UTF-8 is C3 A9, which is also a valid GB2312 pair.
	require.Equal(t, binstr.DoubleByteCJK, binstr.Classify([]byte("é")))
}

func TestDecode(t *testing.T) {
	text, guess := binstr.Decode([]byte{0xD6, 0xD0, 0xCE, 0xC4})
	require.Equal(t, binstr.DoubleByteCJK, guess)
	require.Equal(t, "中文", text)

	text, guess = binstr.Decode([]byte("中文 Wii"))
	require.Equal(t, binstr.DefaultUTF8, guess)
	require.Equal(t, "中文 Wii", text)

	text, guess = binstr.Decode([]byte("Super Mario Galaxy"))
	require.Equal(t, binstr.DoubleByteCJK, guess)
	require.Equal(t, "Super Mario Galaxy", text)
}

func TestDecodeLossy(t *testing.T) {
	text, guess := binstr.Decode([]byte{0xFF, 'A'})
	require.Equal(t, binstr.DefaultUTF8, guess)
	require.Equal(t, "�A", text)
}

func TestEncodingGuessString(t *testing.T) {
	require.Equal(t, "GB2312", binstr.DoubleByteCJK.String())
	require.Equal(t, "UTF-8", binstr.DefaultUTF8.String())
}
