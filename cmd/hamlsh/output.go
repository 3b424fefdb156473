package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/hamlsh"
	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/codec"
)

// queryResult is the structured form of one query's answer.
type queryResult struct {
	Query     int      `json:"query" yaml:"query"`
	Neighbors []int    `json:"neighbors" yaml:"neighbors"`
	Points    []string `json:"points" yaml:"points"`
}

// report is the structured output of the query and scan commands.
type report struct {
	Params  *hamlsh.Params `json:"params,omitempty" yaml:"params,omitempty"`
	Stats   *hamlsh.Stats  `json:"stats,omitempty" yaml:"stats,omitempty"`
	Seed    *int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Results []queryResult  `json:"results" yaml:"results"`
}

func newReport(data []bitvec.BitVector, results [][]int) report {
	r := report{Results: make([]queryResult, len(results))}
	for i, res := range results {
		points := make([]string, len(res))
		for j, idx := range res {
			points[j] = data[idx].String()
		}
		neighbors := res
		if neighbors == nil {
			neighbors = []int{}
		}
		r.Results[i] = queryResult{Query: i, Neighbors: neighbors, Points: points}
	}
	return r
}

// writeText prints results as
//
//	Query point i: found n NNs
//
// followed by one neighbor bit string per line.
func writeText(w io.Writer, rep report) error {
	bw := bufio.NewWriter(w)
	for _, res := range rep.Results {
		fmt.Fprintf(bw, "Query point %d: found %d NNs\n", res.Query, len(res.Neighbors))
		for _, p := range res.Points {
			bw.WriteString(p)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// encodeReport renders rep in the named format ("text" or a codec name).
func encodeReport(format string, rep report) ([]byte, error) {
	if format == "text" {
		var buf bytes.Buffer
		if err := writeText(&buf, rep); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	c, ok := codec.ByName(format)
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want text or one of %v)", format, codec.Names())
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// emit writes rep to stdout or, when out is set, to a local path or
// object store URI.
func (g *globalFlags) emit(ctx context.Context, stdout io.Writer, format, out string, rep report) error {
	data, err := encodeReport(format, rep)
	if err != nil {
		return err
	}
	if out == "" {
		_, err := stdout.Write(data)
		return err
	}
	return g.writeBlob(ctx, out, data)
}

func validateFormat(format string) error {
	if format == "text" {
		return nil
	}
	if _, ok := codec.ByName(format); !ok {
		return fmt.Errorf("unknown format %q (want text or one of %v)", format, codec.Names())
	}
	return nil
}
