// Package s3 stores point files and query reports in Amazon S3.
//
//	store, err := s3.New(ctx, "datasets", s3.WithPrefix("bits/"))
//	if err != nil {
//	    return err
//	}
//	points, err := pointio.Load(ctx, store, "data.txt.zst")
//
// Open records the object's ETag and every ranged read is conditional on it.
// Writes carry a CRC32C checksum unless disabled in UploadConfig, and go
// through the multipart uploader once they exceed the part size.
package s3
