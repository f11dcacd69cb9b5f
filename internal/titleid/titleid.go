// Package titleid maps a title id to its regional aliases.
package titleid

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

//go:embed ids.csv
var defaultIDs []byte

var ErrDuplicateID = errors.New("duplicate title id")

// Map holds, for every id, the other ids of its alias group.
type Map map[string][]string

// Build parses one alias group per CSV record.
func Build(r io.Reader) (Map, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	ret := Map{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse title ids: %w", err)
		}
		ids := make([]string, 0, len(rec))
		for _, id := range rec {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		for _, id := range ids {
			if _, ok := ret[id]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
			}
			mapped := make([]string, 0, len(ids)-1)
			for _, other := range ids {
				if other != id {
					mapped = append(mapped, other)
				}
			}
			ret[id] = mapped
		}
	}
	return ret, nil
}

// Default returns the map built from the bundled id list.
func Default() (Map, error) {
	return Build(bytes.NewReader(defaultIDs))
}

// Alternates returns the aliases of id. Lookup ignores case.
func (m Map) Alternates(id string) []string {
	return m[strings.ToUpper(strings.TrimSpace(id))]
}
