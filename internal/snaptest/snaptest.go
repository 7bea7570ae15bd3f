// Package snaptest provides a golden-file assertion used by generator
// tests to pin the shape of a value: `Test` compares
// a value's JSON encoding (keys sorted recursively, for diff stability)
// against a snapshot file under __snapshots__/<name>.snap, writing the
// file on first run or under UPDATE_SNAPSHOTS=true, and failing in CI if
// no snapshot exists yet.
package snaptest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const snapshotDir = "__snapshots__"

// Test asserts that v's JSON encoding matches the recorded snapshot for
// name, writing a fresh snapshot when one doesn't exist (outside CI) or
// when UPDATE_SNAPSHOTS=true is set.
func Test(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal value for snapshot %s: %w", name, err)
	}
	sorted, err := sortJSONKeys(raw)
	if err != nil {
		return fmt.Errorf("failed to sort snapshot JSON for %s: %w", name, err)
	}

	path := filepath.Join(snapshotDir, name+".snap")
	update := os.Getenv("UPDATE_SNAPSHOTS") == "true"
	inCI := os.Getenv("GITHUB_ACTIONS") == "true"

	existing, err := os.ReadFile(path)
	switch {
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("failed to read snapshot %s: %w", name, err)
	case os.IsNotExist(err):
		if inCI && !update {
			return fmt.Errorf("tool snapshot does not exist for %s; run with UPDATE_SNAPSHOTS=true locally and commit the result", name)
		}
		return writeSnapshot(path, sorted)
	case update:
		return writeSnapshot(path, sorted)
	}

	existingSorted, err := sortJSONKeys(existing)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot JSON for %s: %w", name, err)
	}
	if !bytes.Equal(existingSorted, sorted) {
		return fmt.Errorf("tool schema for %s has changed unexpectedly; re-run with UPDATE_SNAPSHOTS=true if the change is intended", name)
	}
	return nil
}

func writeSnapshot(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// sortJSONKeys re-encodes raw JSON with every object's keys sorted
// recursively, so snapshot diffs reflect real content changes rather
// than incidental map/struct field ordering.
func sortJSONKeys(raw []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(sortValue(v), "", "  ")
}

func sortValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(orderedMap, 0, len(keys))
		for _, k := range keys {
			out = append(out, orderedEntry{key: k, value: sortValue(val[k])})
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sortValue(item)
		}
		return out
	default:
		return val
	}
}

// orderedMap marshals as a JSON object preserving insertion order, so
// sortValue's sorted key order survives encoding/json's normal
// alphabetical-by-reflection-field behavior for map[string]any.
type orderedMap []orderedEntry

type orderedEntry struct {
	key   string
	value any
}

func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(entry.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(entry.value)
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
