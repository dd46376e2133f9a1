package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON encodes v with sorted object keys, no whitespace and no
// HTML escaping, so equal values always hash the same.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	// Round-trip through a generic value so every object, including struct
	// fields, comes back out with sorted keys.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to canonicalize snapshot: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// PrettyJSON produces indented JSON for human consumption.
func PrettyJSON(v interface{}) ([]byte, error) {
	canonical, err := CanonicalJSON(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ComputeSnapshotRev returns "sha256:<hex>" of data.
func ComputeSnapshotRev(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// seal stamps meta with the rev of v. The rev covers everything except
// the rev and the generation time.
func seal(meta *Meta, v interface{}) error {
	generated := meta.GeneratedAt
	meta.SnapshotRev, meta.GeneratedAt = "", ""
	data, err := CanonicalJSON(v)
	meta.GeneratedAt = generated
	if err != nil {
		return err
	}
	meta.SnapshotRev = ComputeSnapshotRev(data)
	return nil
}

// Seal stamps the snapshot with its rev.
func Seal(s *Snapshot) error { return seal(&s.Meta, s) }

// SealDump stamps a catalog dump with its rev.
func SealDump(d *CatalogDump) error { return seal(&d.Meta, d) }
