package audit

import (
	"encoding/json"
	"fmt"
)

// Snapshot serializes v into canonical JSON: object keys are sorted, so two
// equivalent values always produce byte-identical snapshots and records stay
// diffable. Fields tagged `json:"-"` (notably password hashes) never enter
// the snapshot.
func Snapshot(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("snapshot marshal: %w", err)
	}

	// Re-encode through untyped values; encoding/json emits map keys in
	// sorted order, which gives the canonical form.
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("snapshot decode: %w", err)
	}
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("snapshot re-encode: %w", err)
	}
	return string(canonical), nil
}

// snapshotOptional returns nil for a nil value so absent old/new snapshots
// stay absent in the record.
func snapshotOptional(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := Snapshot(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Restore parses a snapshot back into dst. Used by reporting code to diff
// old/new values field by field.
func Restore(snapshot string, dst any) error {
	return json.Unmarshal([]byte(snapshot), dst)
}
