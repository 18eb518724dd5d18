// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client and is used to keep region snapshots in AWS S3
// or a self-hosted MinIO instance.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Helpers
//
//   - EnsureBucket: creates the snapshot bucket on first use.
//   - ListNames: lists object names under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
