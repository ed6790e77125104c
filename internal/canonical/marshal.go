package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Marshal serializes any artifact in canonical form: normalized per the
// determinism rules, keys in lexicographic order at every depth, two-space
// indentation, one trailing newline. Byte-identical across repeated runs on
// logically identical input.
func Marshal(v any) ([]byte, error) {
	val, err := toValue(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: decode artifact: %w", err)
	}
	return encode(Normalize(val))
}

// MarshalBytes canonicalizes a raw JSON document. The input only has to be
// valid JSON; its shape is otherwise unconstrained.
func MarshalBytes(raw []byte) ([]byte, error) {
	var val any
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("canonical: parse artifact: %w", err)
	}
	return encode(Normalize(val))
}

// encode emits the canonical bytes. HTML escaping is off: bucket labels
// like "<5s" must serialize literally. encoding/json emits map keys sorted,
// which supplies the key-order rule; Encode appends the trailing newline.
func encode(val any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(val); err != nil {
		return nil, fmt.Errorf("canonical: marshal artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// toValue reduces structs and typed values to the plain decoded-JSON shape
// Normalize operates on. Always a full round-trip: a map may still hide a
// struct whose fields would otherwise serialize in declaration order.
func toValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var val any
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, err
	}
	return val, nil
}

// ContentID derives a deterministic identifier from the canonical form of
// the identifying fields: a readable prefix plus a truncated content hash.
// Never dependent on map iteration order.
func ContentID(prefix string, fields map[string]any) string {
	data, err := Marshal(fields)
	if err != nil {
		// Identifying fields are plain scalars in practice; an unmarshalable
		// set still needs a stable name.
		data = []byte(fmt.Sprintf("%v", fields))
	}
	sum := sha256.Sum256(data)
	return prefix + "-" + hex.EncodeToString(sum[:])[:12]
}
