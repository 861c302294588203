package namecoin

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DSEntry is one element of a Namecoin domain's "ds" array: the
// 4-tuple (key_tag, algorithm, digest_type, digest_material).
// digest_material is left as the raw on-chain string — hex or base64 —
// since only the caller knows which form was used.
type DSEntry struct {
	KeyTag       uint16
	Algorithm    uint8
	DigestType   uint8
	DigestMaterial string
}

// Record is the parsed "d/<label>" domain value: NS and DS entries.
type Record struct {
	NS []string
	DS []DSEntry
}

// wireRecord mirrors the on-chain JSON shape exactly: ds entries are
// heterogeneous 4-element JSON arrays, not objects.
type wireRecord struct {
	NS    []string          `json:"ns"`
	RawDS []json.RawMessage `json:"ds"`
}

// ParseValue decodes the Namecoin "value" field for a d/ name.
//
// The on-chain encoding is JSON-shaped but historically uses single
// quotes instead of double quotes; a single blind '→" substitution is
// applied before parsing, unconditionally (not only as a fallback), to
// match source behavior.
func ParseValue(value string) (*Record, error) {
	substituted := strings.ReplaceAll(value, "'", "\"")

	var wire wireRecord
	if err := json.Unmarshal([]byte(substituted), &wire); err != nil {
		return nil, fmt.Errorf("unable to parse namecoin domain value: %w", err)
	}

	ds := make([]DSEntry, 0, len(wire.RawDS))

	for i, raw := range wire.RawDS {
		var tuple []interface{}
		if err := json.Unmarshal(raw, &tuple); err != nil {
			return nil, fmt.Errorf("ds entry %d is not an array: %w", i, err)
		}

		entry, err := parseDSTuple(tuple)
		if err != nil {
			return nil, fmt.Errorf("ds entry %d: %w", i, err)
		}

		ds = append(ds, entry)
	}

	return &Record{NS: wire.NS, DS: ds}, nil
}

func parseDSTuple(tuple []interface{}) (DSEntry, error) {
	if len(tuple) != 4 {
		return DSEntry{}, fmt.Errorf("expected a 4-element ds tuple, got %d elements", len(tuple))
	}

	keyTag, err := toUint(tuple[0])
	if err != nil {
		return DSEntry{}, fmt.Errorf("key_tag: %w", err)
	}

	algorithm, err := toUint(tuple[1])
	if err != nil {
		return DSEntry{}, fmt.Errorf("algorithm: %w", err)
	}

	digestType, err := toUint(tuple[2])
	if err != nil {
		return DSEntry{}, fmt.Errorf("digest_type: %w", err)
	}

	digest, ok := tuple[3].(string)
	if !ok {
		return DSEntry{}, fmt.Errorf("digest_material is not a string")
	}

	return DSEntry{
		KeyTag:         uint16(keyTag),
		Algorithm:      uint8(algorithm),
		DigestType:     uint8(digestType),
		DigestMaterial: digest,
	}, nil
}

func toUint(v interface{}) (uint64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", v)
	}

	if f < 0 {
		return 0, fmt.Errorf("expected a non-negative number, got %v", f)
	}

	return uint64(f), nil
}
