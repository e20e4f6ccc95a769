package aws

import (
	"context"
	"fmt"
	"io"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ImageStore uploads product images and returns their public URLs.
type S3ImageStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3ImageStore builds a store for bucket. publicBaseURL defaults to the
// virtual-hosted bucket URL for the config's region.
func NewS3ImageStore(cfg sdkaws.Config, bucket, publicBaseURL string) *S3ImageStore {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &S3ImageStore{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Upload stores body under key and returns the object URL.
func (s *S3ImageStore) Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        sdkaws.String(s.bucket),
		Key:           sdkaws.String(key),
		Body:          body,
		ContentType:   sdkaws.String(contentType),
		ContentLength: sdkaws.Int64(size),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}
