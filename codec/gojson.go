package codec

import (
	"io"

	gojson "github.com/goccy/go-json"
)

// GoJSON produces the same documents as JSON using github.com/goccy/go-json,
// which is considerably faster for large result sets.
type GoJSON struct {
	// Indent, when set, pretty-prints Encode output.
	Indent string
}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

func (c GoJSON) Encode(w io.Writer, v any) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	return enc.Encode(v)
}

func (GoJSON) Name() string { return "go-json" }
