package codec

import (
	"bytes"
	"testing"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryResult struct {
	Query     int               `json:"query" yaml:"query"`
	Point     bitvec.BitVector  `json:"point" yaml:"point"`
	Neighbors []int             `json:"neighbors" yaml:"neighbors"`
	Points    []bitvec.BitVector `json:"points" yaml:"points"`
}

func TestCodecs(t *testing.T) {
	in := queryResult{
		Query:     3,
		Point:     bitvec.MustParse("010"),
		Neighbors: []int{0, 1, 2},
		Points:    []bitvec.BitVector{bitvec.MustParse("000"), bitvec.MustParse("011"), bitvec.MustParse("110")},
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out queryResult
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in.Query, out.Query)
			assert.Equal(t, in.Neighbors, out.Neighbors)
			assert.True(t, in.Point.Equal(out.Point))
			require.Len(t, out.Points, 3)
			assert.Equal(t, "011", out.Points[1].String())
		})
	}
}

func TestJSONCodecsAgree(t *testing.T) {
	v := map[string]any{"neighbors": []int{4, 7}, "point": bitvec.MustParse("1001")}

	std := MustMarshal(JSON{}, v)
	fast := MustMarshal(GoJSON{}, v)
	assert.JSONEq(t, string(std), string(fast))
	assert.JSONEq(t, `{"neighbors":[4,7],"point":"1001"}`, string(std))

}

func TestEncode(t *testing.T) {
	v := map[string]any{"points": []string{"<0>"}}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		var buf bytes.Buffer
		require.NoError(t, c.Encode(&buf, v), c.Name())
		assert.Equal(t, "{\"points\":[\"<0>\"]}\n", buf.String(), c.Name())
	}

	var buf bytes.Buffer
	require.NoError(t, GoJSON{Indent: "  "}.Encode(&buf, []int{1}))
	assert.Equal(t, "[\n  1\n]\n", buf.String())

	buf.Reset()
	require.NoError(t, YAML{}.Encode(&buf, map[string]int{"k": 20}))
	assert.Equal(t, "k: 20\n", buf.String())
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("msgpack")
	assert.False(t, ok)
	assert.Equal(t, "go-json", Default.Name())
}
