// Package buildlog buffers build output for the log pane, merging consecutive
// lines of the same kind into one item so the pane repaints once per block.
package buildlog

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

type OutputType int

const (
	Normal OutputType = iota
	Succeed
	Error
	Step
	Exec
)

func (t OutputType) String() string {
	switch t {
	case Succeed:
		return "succeed"
	case Error:
		return "error"
	case Step:
		return "step"
	case Exec:
		return "exec"
	default:
		return "normal"
	}
}

// Color is the log pane colour tag for the type, empty for plain text.
func (t OutputType) Color() string {
	switch t {
	case Succeed:
		return "green"
	case Error:
		return "red"
	case Step:
		return "blue"
	case Exec:
		return "yellow"
	default:
		return ""
	}
}

func (t OutputType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *OutputType) UnmarshalText(b []byte) error {
	for _, v := range []OutputType{Normal, Succeed, Error, Step, Exec} {
		if strings.EqualFold(v.String(), string(b)) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown output type %q", b)
}

// Item is one block of output sharing a type.
type Item struct {
	Output string     `json:"output"`
	Type   OutputType `json:"type"`
}

// Tagged wraps the output in [colour]...[-] tags for the log pane.
func (i Item) Tagged() string {
	c := i.Type.Color()
	if c == "" {
		return i.Output
	}
	return "[" + c + "]" + i.Output + "[-]"
}

// TagRegex matches the colour tags produced by Tagged. Other bracketed
// text, such as a region code in a game title, is left alone.
var TagRegex = regexp.MustCompile(`\[(?:green|red|blue|yellow)\]|\[-\]`)

// StripTags removes colour tags from s.
func StripTags(s string) string {
	return TagRegex.ReplaceAllString(s, "")
}

type Buffer struct {
	mu      sync.Mutex
	items   []*Item
	pending strings.Builder

	// OnFlush receives each item in order during Flush.
	// When nil, flushed items are dropped.
	OnFlush func(Item)
}

func New(initialCapacity int) *Buffer {
	b := &Buffer{}
	if initialCapacity > 0 {
		b.pending.Grow(initialCapacity)
	}
	return b
}

// Append adds output of the given type. Empty output is ignored.
func (b *Buffer) Append(output string, t OutputType, appendNewline bool) {
	if output == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 || b.items[len(b.items)-1].Type != t {
		b.settle()
		b.items = append(b.items, &Item{Type: t})
	}
	b.pending.WriteString(output)
	if appendNewline {
		b.pending.WriteString("\n")
	}
}

// settle moves the pending text into the last item.
func (b *Buffer) settle() {
	if len(b.items) > 0 {
		b.items[len(b.items)-1].Output = b.pending.String()
	}
	b.pending.Reset()
}

// Flush hands all buffered items to OnFlush and clears the buffer.
func (b *Buffer) Flush() {
	b.mu.Lock()
	b.settle()
	items := b.items
	b.items = nil
	handler := b.OnFlush
	b.mu.Unlock()

	if handler == nil {
		return
	}
	for _, it := range items {
		handler(*it)
	}
}

// Len reports the number of buffered items, including the one still being filled.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
