package disc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"wiivcinjector/internal/binstr"
	"wiivcinjector/internal/util"
)

const (
	offsetGameID   = 0x00
	offsetWiiMagic = 0x18
	offsetGCMagic  = 0x1C
	offsetTitle    = 0x20
	titleFieldSize = 0x3E0
	// shortest source accepted as an image
	minHeaderSize = 0x60

	wiiMagic = 0x5D1C9EA3
	gcMagic  = 0xC2339F3D
)

var ErrNotImage = errors.New("not a disc image")

type Platform string

const (
	PlatformWii      Platform = "Wii"
	PlatformGameCube Platform = "GameCube"
	PlatformUnknown  Platform = "Unknown"
)

// Info is the decoded disc header.
type Info struct {
	Path          string   `json:"path"`
	GameID        string   `json:"game_id"`
	Platform      Platform `json:"platform"`
	Title         string   `json:"title"`
	TitleEncoding string   `json:"title_encoding"`
	Size          int64    `json:"size"`
	SizeText      string   `json:"size_text"`
	Alternates    []string `json:"alternates,omitempty"`
}

// Image is an opened game image. All reads go through one cursor, so
// access is serialised.
type Image struct {
	mu     sync.Mutex
	path   string
	src    io.ReadSeeker
	closer io.Closer
	size   int64
	reader *binstr.Reader
}

func Open(path string, maxStringLength int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, err := New(f, path, maxStringLength)
	if err != nil {
		f.Close()
		return nil, err
	}
	img.closer = f
	return img, nil
}

// New wraps an already opened source.
func New(src io.ReadSeeker, path string, maxStringLength int) (*Image, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}
	if size < minHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the disc header", ErrNotImage, size)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind image: %w", err)
	}
	return &Image{
		path:   path,
		src:    src,
		size:   size,
		reader: binstr.NewReader(maxStringLength),
	}, nil
}

func (img *Image) Path() string { return img.path }
func (img *Image) Size() int64  { return img.size }

func (img *Image) Close() error {
	img.mu.Lock()
	defer img.mu.Unlock()
	if img.closer == nil {
		return nil
	}
	err := img.closer.Close()
	img.closer = nil
	return err
}

func (img *Image) Info() (*Info, error) {
	img.mu.Lock()
	defer img.mu.Unlock()

	header := make([]byte, offsetTitle)
	if _, err := img.src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek header: %w", err)
	}
	if _, err := io.ReadFull(img.src, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	info := &Info{
		Path:     img.path,
		GameID:   string(bytes.TrimRight(header[offsetGameID:offsetGameID+6], "\x00 ")),
		Platform: PlatformUnknown,
		Size:     img.size,
		SizeText: util.LengthString(img.size),
	}
	switch {
	case binary.BigEndian.Uint32(header[offsetWiiMagic:]) == wiiMagic:
		info.Platform = PlatformWii
	case binary.BigEndian.Uint32(header[offsetGCMagic:]) == gcMagic:
		info.Platform = PlatformGameCube
	}

	field := make([]byte, min(int64(titleFieldSize), img.size-offsetTitle))
	if _, err := io.ReadFull(img.src, field); err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}
	// a title filling the whole field has no terminator
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	title, guess := binstr.Decode(field)
	info.Title = title
	info.TitleEncoding = guess.String()
	return info, nil
}

// SetMaxStringLength changes the run limit of later reads.
func (img *Image) SetMaxStringLength(n int) {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.reader = binstr.NewReader(n)
}

func (img *Image) ReadString(offset int64, peek bool) (binstr.Entry, error) {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.reader.ReadEntry(img.src, offset, peek)
}

func (img *Image) ReadTable(offset int64, count int, order binary.ByteOrder) ([]binstr.Entry, error) {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.reader.ReadTable(img.src, offset, count, order)
}
