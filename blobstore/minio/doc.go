// Package minio stores point files and query reports in a MinIO bucket, or in
// any other S3-compatible service reachable through minio-go.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil {
//	    return err
//	}
//
//	store := minioblob.NewStore(client, "datasets", "bits/")
//	points, err := pointio.Load(ctx, store, "data.txt.zst")
//
// Reads use ranged GetObject calls. Create streams through PutObject with an
// unknown size, so large reports are uploaded in parts by the client. Every
// upload records the content type derived from the blob name.
package minio
