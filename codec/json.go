package codec

import (
	"encoding/json"
	"io"
)

// Default is the codec used when no format is named.
var Default Codec = GoJSON{}

// JSON is the standard-library JSON codec.
//
// Types implementing encoding.TextMarshaler, such as bitvec.BitVector and
// family.Kind, encode as strings.
type JSON struct {
	// Indent, when set, pretty-prints Encode output.
	Indent string
}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (c JSON) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	return enc.Encode(v)
}

func (JSON) Name() string { return "json" }
