// Package snapshot stores manuscript version snapshots as plain JSON
// files: one directory per version holding a meta.json marker and an
// optional snapshot.json payload. Deleted versions are moved to a
// .trash subdirectory rather than removed.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
)

const (
	metaFileName     = "meta.json"
	snapshotFileName = "snapshot.json"
	trashDirName     = ".trash"
)

// Metadata describes one stored version.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatedAt   int64  `json:"createdAt"`
	ParentID    string `json:"parentId,omitempty"`
	Description string `json:"description,omitempty"`
}

// Payload is the versioned manuscript state. Sections are raw JSON:
// the snapshot store persists what callers hand it without interpreting
// their schemas, except for the comparison metrics below.
type Payload struct {
	Meta       Metadata        `json:"meta"`
	Manuscript string          `json:"manuscript,omitempty"`
	Candidates json.RawMessage `json:"candidates,omitempty"`
	Analyses   json.RawMessage `json:"analyses,omitempty"`
	Decisions  json.RawMessage `json:"decisions,omitempty"`
}

// Comparison summarizes how two versions differ.
type Comparison struct {
	A                  Metadata         `json:"a"`
	B                  Metadata         `json:"b"`
	AvgConfidenceDelta float64          `json:"avgConfidenceDelta"`
	SpoilerDelta       int64            `json:"spoilerDelta"`
	DecisionsChanged   []DecisionChange `json:"decisionsChanged"`
}

// DecisionChange records one decision that differs between versions.
type DecisionChange struct {
	ID string          `json:"id"`
	A  json.RawMessage `json:"a,omitempty"`
	B  json.RawMessage `json:"b,omitempty"`
}

// Store manages the versions directory.
type Store struct {
	dir string
}

// NewStore creates a snapshot store rooted at dir. The directory is
// created lazily on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns metadata for all stored versions, oldest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Metadata{}, nil
	}
	if err != nil {
		return nil, inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("cannot read versions directory %s", s.dir), err)
	}

	out := make([]Metadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == trashDirName {
			continue
		}
		meta, err := s.readMeta(entry.Name())
		if err != nil {
			// Skip versions with unreadable markers; they are
			// recoverable by hand and must not hide the rest.
			continue
		}
		out = append(out, meta)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out, nil
}

// Create makes a new version directory with metadata and an optional
// initial payload. An empty id is replaced by a generated UUID.
func (s *Store) Create(id, name, parentID string, payload json.RawMessage) (Metadata, error) {
	if id == "" {
		id = uuid.NewString()
	}

	dir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Metadata{}, inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("cannot create version directory %s", dir), err)
	}

	meta := Metadata{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
		ParentID:  parentID,
	}

	if err := writeJSON(filepath.Join(dir, metaFileName), meta); err != nil {
		return Metadata{}, err
	}
	if payload != nil {
		if err := writeRaw(filepath.Join(dir, snapshotFileName), payload); err != nil {
			return Metadata{}, err
		}
	}

	return meta, nil
}

// Save overwrites the payload of an existing version, creating the
// directory if needed.
func (s *Store) Save(id string, payload json.RawMessage) error {
	dir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("cannot create version directory %s", dir), err)
	}
	return writeRaw(filepath.Join(dir, snapshotFileName), payload)
}

// Load reads a version's payload with its metadata filled in. A missing
// snapshot.json yields an empty payload, not an error; a missing
// meta.json is an error.
func (s *Store) Load(id string) (Payload, error) {
	meta, err := s.readMeta(id)
	if err != nil {
		return Payload{}, err
	}

	var payload Payload
	data, err := os.ReadFile(filepath.Join(s.dir, id, snapshotFileName))
	if err == nil {
		// Tolerate a corrupt payload; meta is the source of truth
		// for the version's existence.
		_ = json.Unmarshal(data, &payload)
	}

	payload.Meta = meta
	return payload, nil
}

// Delete moves a version to the trash directory. Deleting an absent
// version is a no-op.
func (s *Store) Delete(id string) error {
	dir := filepath.Join(s.dir, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	trash := filepath.Join(s.dir, trashDirName)
	if err := os.MkdirAll(trash, 0o755); err != nil {
		return inkerrors.New(inkerrors.ErrCodeSnapshotIO, "cannot create trash directory", err)
	}

	dst := filepath.Join(trash, fmt.Sprintf("%s-%d", id, time.Now().UnixMilli()))
	if err := os.Rename(dir, dst); err != nil {
		return inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("cannot move version %s to trash", id), err)
	}
	return nil
}

// Compare loads two versions and computes a minimal metrics diff:
// average analysis confidence delta, spoiler count delta, and the set
// of changed decisions.
func (s *Store) Compare(aID, bID string) (Comparison, error) {
	a, err := s.Load(aID)
	if err != nil {
		return Comparison{}, err
	}
	b, err := s.Load(bID)
	if err != nil {
		return Comparison{}, err
	}

	aAnalyses := decodeMap(a.Analyses)
	bAnalyses := decodeMap(b.Analyses)

	cmp := Comparison{
		A:                  a.Meta,
		B:                  b.Meta,
		AvgConfidenceDelta: avgConfidence(bAnalyses) - avgConfidence(aAnalyses),
		SpoilerDelta:       sumSpoilers(bAnalyses) - sumSpoilers(aAnalyses),
		DecisionsChanged:   diffDecisions(decodeRawMap(a.Decisions), decodeRawMap(b.Decisions)),
	}
	return cmp, nil
}

func (s *Store) readMeta(id string) (Metadata, error) {
	path := filepath.Join(s.dir, id, metaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("cannot read version metadata for %s", id), err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("version metadata for %s is corrupt", id), err)
	}
	return meta, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return inkerrors.InternalError("cannot marshal snapshot data", err)
	}
	return writeRaw(path, data)
}

func writeRaw(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return inkerrors.New(inkerrors.ErrCodeSnapshotIO,
			fmt.Sprintf("cannot write %s", path), err)
	}
	return nil
}

// decodeMap decodes a JSON object of objects, tolerating absence.
func decodeMap(raw json.RawMessage) map[string]map[string]json.RawMessage {
	out := map[string]map[string]json.RawMessage{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

// decodeRawMap decodes a JSON object keeping values raw.
func decodeRawMap(raw json.RawMessage) map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func avgConfidence(analyses map[string]map[string]json.RawMessage) float64 {
	var sum float64
	var n int
	for _, a := range analyses {
		if raw, ok := a["confidence"]; ok {
			var v float64
			if json.Unmarshal(raw, &v) == nil {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func sumSpoilers(analyses map[string]map[string]json.RawMessage) int64 {
	var sum int64
	for _, a := range analyses {
		if raw, ok := a["spoilerCount"]; ok {
			var v int64
			if json.Unmarshal(raw, &v) == nil {
				sum += v
			}
		}
	}
	return sum
}

func diffDecisions(a, b map[string]json.RawMessage) []DecisionChange {
	ids := make([]string, 0, len(a)+len(b))
	seen := map[string]bool{}
	for id := range a {
		ids = append(ids, id)
		seen[id] = true
	}
	for id := range b {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var out []DecisionChange
	for _, id := range ids {
		av, bv := a[id], b[id]
		if string(av) != string(bv) {
			out = append(out, DecisionChange{ID: id, A: av, B: bv})
		}
	}
	return out
}
