package placeholder

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Context is the lookup object placeholders resolve against
type Context map[string]any

// NewContext converts a struct (or any JSON marshalable value) into a
// Context using its JSON field names. Numbers are kept as json.Number so
// integers render without a decimal point.
func NewContext(v any) (Context, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal placeholder context")
	}

	var out map[string]any
	if err := Decode(raw, &out); err != nil {
		return nil, goerr.Wrap(err, "placeholder context must be a JSON object")
	}
	return Context(out), nil
}

// Set assigns a top level key
func (c Context) Set(key string, value any) Context {
	c[key] = value
	return c
}

// Merge copies every key of src into c, overwriting existing keys
func (c Context) Merge(src map[string]any) Context {
	for k, v := range src {
		c[k] = v
	}
	return c
}

// Decode unmarshals JSON keeping numbers as json.Number
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode JSON")
	}
	return nil
}
