package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marshal encodes a document for storage.
//
// Differences from json.Marshal:
//   - No HTML escaping (< > & are written verbatim)
//   - No trailing newline
//
// Struct fields keep declaration order, so the same value always
// produces the same bytes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// NormalizeText trims surrounding whitespace and applies Unicode NFC.
// Categories typed on different keyboards compare equal after normalization.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
