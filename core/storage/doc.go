// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the small Client interface the bank feature
// needs to import item lists from a bucket and export pool snapshots to it. Both AWS S3
// and self-hosted MinIO are supported.
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - MakeBucket: Creates the bucket when the integrity check is asked to fix it.
//   - PutObject: Uploads a pool export.
//   - GetObject: Streams an item list for import.
//   - ListObjects: Lists item lists under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, config.Bucket)
package storage
