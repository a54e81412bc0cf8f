package moderation

import (
	"context"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// GCSObjectStore provides access to the objects in a single storage bucket.
type GCSObjectStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSObjectStore creates an object store bound to the given bucket. When no
// credentials file is given, application default credentials are used.
func NewGCSObjectStore(ctx context.Context, bucket, credentialsPath string) (*GCSObjectStore, error) {
	wrapMsg := "unable to initialize the object store"

	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &GCSObjectStore{client: client, bucket: client.Bucket(bucket)}, nil
}

// Download copies an object to a local file.
func (s *GCSObjectStore) Download(ctx context.Context, name, localPath string) error {
	wrapMsg := "unable to download object `" + name + "`"

	reader, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer reader.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// Upload replaces an object with the contents of a local file.
func (s *GCSObjectStore) Upload(ctx context.Context, localPath, name, contentType string) error {
	wrapMsg := "unable to upload object `" + name + "`"

	in, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer in.Close()

	writer := s.bucket.Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, in); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, wrapMsg)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// Remove deletes an object from the bucket.
func (s *GCSObjectStore) Remove(ctx context.Context, name string) error {
	err := s.bucket.Object(name).Delete(ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to remove object `%s`", name)
	}
	return nil
}

// Close closes the underlying API client.
func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}
