package bucket

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"s3fetch/internal/errors"
)

// Download downloads an object from S3 and writes it to an io.Writer.
// It provides stream-based downloading with memory-efficient handling of
// large files. Progress tracking can be configured via DownloadOption
// parameters.
//
// Errors:
//   - ErrInvalidInput: if bucket is empty, key is invalid, or writer is nil
//   - ErrObjectNotFound: if the specified object doesn't exist
//   - Network errors or AWS SDK errors wrapped in Error type
func (c *Client) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	opts ...DownloadOption,
) (*DownloadResult, error) {
	if bucket == "" {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validateObjectKey(key); err != nil {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if writer == nil {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("writer cannot be nil")
	}

	config := &DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := c.s3Client.GetObject(ctx, input)
	if err != nil {
		if isObjectNotFound(err) {
			return nil, errors.NewError("download", errors.ErrObjectNotFound).
				WithBucket(bucket).
				WithKey(key)
		}
		if isAccessDenied(err) {
			return nil, errors.NewError("download", errors.ErrAccessDenied).
				WithBucket(bucket).
				WithKey(key)
		}
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	size := aws.ToInt64(output.ContentLength)

	var reader io.Reader = output.Body
	if config.ProgressTracker != nil {
		reader = &progressReader{
			reader:          output.Body,
			progressTracker: config.ProgressTracker,
			total:           size,
		}
	}

	bytesWritten, err := io.Copy(writer, reader)
	if err != nil {
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	if size == 0 {
		size = bytesWritten
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(bytesWritten, size)
		config.ProgressTracker.Complete()
	}

	return &DownloadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}, nil
}

// DownloadFile downloads an object from S3 to a local file.
// The file will be created if it doesn't exist, or truncated if it does.
// A failed download leaves no partial file behind.
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, filepath string,
	opts ...DownloadOption,
) (*DownloadResult, error) {
	if filepath == "" {
		return nil, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath cannot be empty")
	}

	file, err := os.Create(filepath)
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}

	result, err := c.Download(ctx, bucket, key, file, opts...)
	if cerr := file.Close(); cerr != nil && err == nil {
		err = errors.NewError("downloadFile", cerr).WithBucket(bucket).WithKey(key)
	}
	if err != nil {
		os.Remove(filepath)
		return nil, err
	}

	return result, nil
}

// progressReader wraps an io.Reader to track progress.
type progressReader struct {
	reader          io.Reader
	progressTracker ProgressTracker
	total           int64
	bytesRead       int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bytesRead += int64(n)
		pr.progressTracker.Update(pr.bytesRead, pr.total)
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}
