package storage

import (
	"context"
	"io"
	"time"
)

// PhotoStore binds the S3 client to a single bucket for evidence photos.
type PhotoStore struct {
	client *S3Client
	bucket string
}

func NewPhotoStore(client *S3Client, bucket string) *PhotoStore {
	return &PhotoStore{client: client, bucket: bucket}
}

// UploadPhoto stores a photo and returns the key it was stored under.
// The key doubles as the stable reference recorded on the submission.
func (p *PhotoStore) UploadPhoto(ctx context.Context, key string, body io.Reader) (string, error) {
	if err := p.client.Upload(ctx, p.bucket, key, body); err != nil {
		return "", err
	}
	return key, nil
}

// PhotoURL returns a time-limited download link for a stored photo.
func (p *PhotoStore) PhotoURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return p.client.GetPresignedURL(ctx, p.bucket, key, expiration)
}

// DeletePhoto removes a stored photo.
func (p *PhotoStore) DeletePhoto(ctx context.Context, key string) error {
	return p.client.Delete(ctx, p.bucket, key)
}
