package binstr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxLength bounds a single run when no other limit is configured.
const DefaultMaxLength = 64 * 1024

const chunkSize = 256

var (
	ErrOutOfBounds     = errors.New("position out of bounds")
	ErrUnterminatedRun = errors.New("unterminated string")
)

// Entry is one decoded null-terminated run.
type Entry struct {
	Offset   int64         `json:"offset"`
	Text     string        `json:"text"`
	Encoding EncodingGuess `json:"encoding"`
	Length   int           `json:"length"` // bytes, terminator excluded
}

func (g EncodingGuess) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *EncodingGuess) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "GB2312":
		*g = DoubleByteCJK
	case "UTF-8", "":
		*g = DefaultUTF8
	default:
		return fmt.Errorf("unknown encoding %q", b)
	}
	return nil
}

// Reader extracts null-terminated strings from seekable sources.
// MaxLength <= 0 leaves a run bounded only by the end of the source.
type Reader struct {
	MaxLength int
}

func NewReader(maxLength int) *Reader {
	return &Reader{MaxLength: maxLength}
}

var defaultReader = NewReader(DefaultMaxLength)

// ReadString reads the run starting at position with the default reader.
// When peek is true the cursor of src is restored before returning;
// otherwise it is left just past the terminating zero byte.
func ReadString(src io.ReadSeeker, position int64, peek bool) (string, error) {
	e, err := defaultReader.ReadEntry(src, position, peek)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

func (r *Reader) ReadString(src io.ReadSeeker, position int64, peek bool) (string, error) {
	e, err := r.ReadEntry(src, position, peek)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

// ReadEntry is ReadString that also reports the guessed encoding and the byte length.
// On error the cursor is always restored.
func (r *Reader) ReadEntry(src io.ReadSeeker, position int64, peek bool) (entry Entry, err error) {
	saved, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get cursor: %w", err)
	}
	defer func() {
		if !peek && err == nil {
			return
		}
		if _, serr := src.Seek(saved, io.SeekStart); serr != nil && err == nil {
			entry, err = Entry{}, fmt.Errorf("failed to restore cursor: %w", serr)
		}
	}()

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get source size: %w", err)
	}
	if position < 0 || position > size {
		return Entry{}, fmt.Errorf("%w: offset %d, size %d", ErrOutOfBounds, position, size)
	}
	if _, err = src.Seek(position, io.SeekStart); err != nil {
		return Entry{}, fmt.Errorf("failed to seek to %d: %w", position, err)
	}

	run, err := r.scan(src, position)
	if err != nil {
		return Entry{}, err
	}
	if !peek {
		if _, err = src.Seek(position+int64(len(run))+1, io.SeekStart); err != nil {
			return Entry{}, fmt.Errorf("failed to seek past terminator: %w", err)
		}
	}

	text, guess := Decode(run)
	return Entry{Offset: position, Text: text, Encoding: guess, Length: len(run)}, nil
}

// scan reads chunks until the first zero byte and returns the bytes before it.
// The cursor ends up somewhere past the terminator.
func (r *Reader) scan(src io.Reader, position int64) ([]byte, error) {
	var run []byte
	buf := make([]byte, chunkSize)
	for {
		n, rerr := src.Read(buf)
		if i := bytes.IndexByte(buf[:n], 0); i >= 0 {
			run = append(run, buf[:i]...)
			if r.MaxLength > 0 && len(run) > r.MaxLength {
				return nil, fmt.Errorf("%w: run at %d exceeds %d bytes", ErrUnterminatedRun, position, r.MaxLength)
			}
			return run, nil
		}
		run = append(run, buf[:n]...)
		if r.MaxLength > 0 && len(run) > r.MaxLength {
			return nil, fmt.Errorf("%w: run at %d exceeds %d bytes", ErrUnterminatedRun, position, r.MaxLength)
		}
		if rerr == io.EOF {
			return nil, fmt.Errorf("%w: no terminator after offset %d", ErrUnterminatedRun, position)
		}
		if rerr != nil {
			return nil, fmt.Errorf("failed to read at %d: %w", position, rerr)
		}
	}
}

// ReadTable reads count 32-bit string pointers at position and resolves each one.
// The cursor of src is restored afterwards.
func (r *Reader) ReadTable(src io.ReadSeeker, position int64, count int, order binary.ByteOrder) (entries []Entry, err error) {
	if count < 0 {
		return nil, fmt.Errorf("invalid pointer count %d", count)
	}
	saved, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	defer func() {
		if _, serr := src.Seek(saved, io.SeekStart); serr != nil && err == nil {
			entries, err = nil, fmt.Errorf("failed to restore cursor: %w", serr)
		}
	}()

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get source size: %w", err)
	}
	if position < 0 || position+int64(count)*4 > size {
		return nil, fmt.Errorf("%w: table of %d pointers at %d, size %d", ErrOutOfBounds, count, position, size)
	}
	if _, err = src.Seek(position, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to %d: %w", position, err)
	}
	pointers := make([]uint32, count)
	if err = binary.Read(src, order, pointers); err != nil {
		return nil, fmt.Errorf("failed to read pointer table: %w", err)
	}

	entries = make([]Entry, 0, count)
	for i, p := range pointers {
		e, err := r.ReadEntry(src, int64(p), true)
		if err != nil {
			return nil, fmt.Errorf("pointer %d (0x%08X): %w", i, p, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
