package repository

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// EncodeJSON renders v the way stored documents are written: two-space
// indentation and no HTML escaping, so "&" in titles stays readable
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, goerr.Wrap(err, "failed to encode document")
	}
	return buf.Bytes(), nil
}
