package archive

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// PutObjectAPI is the subset of *s3.Client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores captures in an S3 bucket.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1"})
//	store := archive.NewS3Store(client, "captures", "btp/")
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Store returns an S3Store writing under prefix in bucket.
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads <prefix><id>.bin and <prefix><id>.json and returns the id.
func (s *S3Store) Put(ctx context.Context, c Capture) (string, error) {
	id := newID(c.Time)
	t := c.Time
	if t.IsZero() {
		t = time.Now()
	}
	metadata := map[string]string{
		"direction":    string(c.Direction),
		"url":          c.URL,
		"capture-time": t.UTC().Format(time.RFC3339Nano),
	}

	objects := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{s.prefix + id + ".bin", c.Raw, "application/octet-stream"},
		{s.prefix + id + ".json", c.JSON, "application/json"},
	}
	for _, o := range objects {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(o.key),
			Body:        bytes.NewReader(o.body),
			ContentType: aws.String(o.contentType),
			Metadata:    metadata,
		})
		if err != nil {
			return "", errors.Wrapf(err, "Failed to upload s3://%s/%s", s.bucket, o.key)
		}
	}
	return id, nil
}
