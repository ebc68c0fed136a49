// internal/commit/types.go
package commit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"bat/shared/types"
	"bat/shared/utils"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Commit is an immutable snapshot of the staging index linked to its parent.
// Hash is the identity of the encoded record and is not part of it.
type Commit struct {
	Hash      string         `json:"-"`
	Timestamp string         `json:"timestamp"`
	Message   string         `json:"message"`
	Files     []shared.Entry `json:"files"`
	Parent    string         `json:"parent,omitempty"`
}

// ObjectStore is the subset of the object store the graph needs.
type ObjectStore interface {
	Store(data []byte) (string, error)
	Get(hash string) ([]byte, error)
}

// Stager is the subset of the staging index the graph needs.
type Stager interface {
	Snapshot() ([]shared.Entry, error)
	Clear() error
}

// Encode returns the canonical serialization the commit hash is taken over.
// Field order is fixed by the struct, files is never null and an absent
// parent is omitted.
func (c *Commit) Encode() ([]byte, error) {
	rec := *c
	if rec.Files == nil {
		rec.Files = []shared.Entry{}
	}
	return json.Marshal(&rec)
}

// record mirrors Commit with a pointer so a missing files field can be told
// apart from an empty one.
type record struct {
	Timestamp string          `json:"timestamp"`
	Message   string          `json:"message"`
	Files     *[]shared.Entry `json:"files"`
	Parent    string          `json:"parent,omitempty"`
}

// Decode parses a commit record, rejecting anything that is not one.
func Decode(data []byte) (*Commit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var r record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding commit: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after commit record")
	}

	if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
		return nil, fmt.Errorf("invalid commit timestamp %q: %w", r.Timestamp, err)
	}
	if r.Files == nil {
		return nil, fmt.Errorf("commit has no files field")
	}
	for n, f := range *r.Files {
		if f.Path == "" || !utils.IsValidHash(f.Hash) {
			return nil, fmt.Errorf("invalid file entry %d", n)
		}
	}
	if r.Parent != "" && !utils.IsValidHash(r.Parent) {
		return nil, fmt.Errorf("invalid parent hash %q", r.Parent)
	}

	return &Commit{
		Timestamp: r.Timestamp,
		Message:   r.Message,
		Files:     *r.Files,
		Parent:    r.Parent,
	}, nil
}
