package binstr

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// EncodingGuess is the probable encoding of a byte run.
type EncodingGuess int

const (
	DefaultUTF8 EncodingGuess = iota
	DoubleByteCJK
)

func (g EncodingGuess) String() string {
	switch g {
	case DoubleByteCJK:
		return "GB2312"
	default:
		return "UTF-8"
	}
}

// Encoding returns the decoder family used for the guess.
// GBK is a superset of GB2312 and decodes its EUC-CN byte pairs unchanged.
func (g EncodingGuess) Encoding() encoding.Encoding {
	if g == DoubleByteCJK {
		return simplifiedchinese.GBK
	}
	return unicode.UTF8
}

// IsGB2312 reports whether every non-ASCII byte in b forms a GB2312 hanzi pair
// (lead 0xB0-0xF7, trail 0xA0-0xFE). An empty or pure ASCII slice passes.
func IsGB2312(b []byte) bool {
	i := 0
	for i < len(b) {
		if b[i] <= 127 {
			i++
			continue
		}
		if b[i] < 176 || b[i] > 247 {
			return false
		}
		if i == len(b)-1 {
			return false
		}
		i++
		if b[i] < 160 || b[i] > 254 {
			return false
		}
		i++
	}
	return true
}

// Classify returns DoubleByteCJK when b passes IsGB2312, DefaultUTF8 otherwise.
func Classify(b []byte) EncodingGuess {
	if IsGB2312(b) {
		return DoubleByteCJK
	}
	return DefaultUTF8
}

// Decode transcodes b to UTF-8 using the guessed encoding.
// Bytes the decoder rejects are replaced rather than reported.
func Decode(b []byte) (string, EncodingGuess) {
	guess := Classify(b)
	out, err := guess.Encoding().NewDecoder().Bytes(b)
	if err != nil || !utf8.Valid(out) {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), guess
	}
	return string(out), guess
}
