// Package blobstore abstracts where point files are read from and where query
// reports are written to.
//
// A BlobStore addresses blobs by slash-separated names relative to its root.
// Implementations are safe for concurrent use:
//
//   - LocalStore keeps blobs under a directory and writes through temp files
//   - MemoryStore keeps blobs in a map, for tests
//   - s3.Store and minio.Store in the subpackages talk to object storage
//
// NewReader turns a Blob into a sequential reader, which is all pointio needs:
//
//	blob, err := store.Open(ctx, "queries.txt")
//	if err != nil {
//	    return err
//	}
//	defer blob.Close()
//	r, err := blobstore.NewReader(ctx, blob)
package blobstore
