// Package pointio reads and writes point files.
//
// A point file holds whitespace-separated tokens of '0' and '1' characters,
// one point per token and normally one token per line. All points of a file
// share the same dimension. Files may be compressed with zstd or lz4 frames;
// Read detects the format from the leading magic number.
//
//	points, err := pointio.Load(ctx, store, "data.txt.zst",
//	    pointio.WithResource(rc),
//	)
package pointio
