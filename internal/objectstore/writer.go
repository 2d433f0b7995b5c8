// Package objectstore implements the S3 landing zone for extraction files.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by Writer.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// UploadError indicates an object-store transfer failed.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Writer lands local files in an S3 bucket under date-partitioned keys.
type Writer struct {
	client S3API
	bucket string
	logger *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithClient sets a custom S3 client (useful for testing).
func WithClient(c S3API) WriterOption {
	return func(w *Writer) { w.client = c }
}

// NewWriter creates a Writer for the given bucket.
func NewWriter(ctx context.Context, bucket, region string, logger *slog.Logger, opts ...WriterOption) (*Writer, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name required")
	}
	w := &Writer{bucket: bucket, logger: logger}
	for _, o := range opts {
		o(w)
	}
	if w.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		w.client = s3.NewFromConfig(cfg)
	}
	return w, nil
}

// Upload copies a local file to the named key, overwriting any existing
// object, and returns the s3:// URI. Callers verify the source file exists
// and is non-empty before calling.
func (w *Writer) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", &UploadError{Bucket: w.bucket, Key: key, Err: err}
	}
	defer func() { _ = f.Close() }()

	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", &UploadError{Bucket: w.bucket, Key: key, Err: err}
	}

	uri := fmt.Sprintf("s3://%s/%s", w.bucket, key)
	w.logger.Info("uploaded extraction file", "path", localPath, "uri", uri)
	return uri, nil
}

// Exists reports whether the key is present in the bucket.
func (w *Writer) Exists(ctx context.Context, key string) (bool, error) {
	_, err := w.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking s3://%s/%s: %w", w.bucket, key, err)
	}
	return true, nil
}

// Download retrieves an object to a local path.
func (w *Writer) Download(ctx context.Context, key, localPath string) error {
	out, err := w.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("getting s3://%s/%s: %w", w.bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("writing %s: %w", localPath, err)
	}
	return nil
}

// List returns object keys under the given prefix.
func (w *Writer) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := w.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(w.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", w.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}
