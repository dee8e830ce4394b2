// Package bucket provides the S3 client used to list bucket contents and
// download selected objects.
package bucket

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ClientConfig holds configuration options for the bucket client.
type ClientConfig struct {
	// Region is the AWS region for S3 operations
	Region string

	// Endpoint is a custom S3 endpoint URL for S3-compatible services
	Endpoint string

	// AccessKey and SecretKey configure static credentials.
	// When empty, the default AWS credential chain is used.
	AccessKey string
	SecretKey string

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// Timeout for individual S3 operations (0 means no timeout)
	Timeout time.Duration

	// ForcePathStyle forces path-style URLs instead of virtual-hosted style.
	// Required for most S3-compatible services.
	ForcePathStyle bool

	// CustomAWSConfig overrides the default configuration loading behavior
	CustomAWSConfig *aws.Config

	// CustomHTTPClient overrides the HTTP client used by the SDK
	CustomHTTPClient *http.Client
}

// Option is a functional option for configuring the bucket client.
type Option func(*ClientConfig)

// ProgressTracker defines the interface for tracking download progress.
type ProgressTracker interface {
	// Update is called periodically with the bytes transferred so far and
	// the expected total (0 when unknown)
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer finishes successfully
	Complete()
}

// DownloadOptionConfig holds per-download configuration.
type DownloadOptionConfig struct {
	// ProgressTracker receives progress updates during the download
	ProgressTracker ProgressTracker
}

// DownloadOption is a functional option for configuring a single download.
type DownloadOption func(*DownloadOptionConfig)

// WithDownloadProgress sets a progress tracker for a download operation.
func WithDownloadProgress(tracker ProgressTracker) DownloadOption {
	return func(c *DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// DownloadResult contains the metadata of a completed download.
type DownloadResult struct {
	// Key is the S3 object key that was downloaded
	Key string

	// Size is the number of bytes written
	Size int64

	// ETag is the S3 entity tag for the object
	ETag string

	// Duration is how long the download took
	Duration time.Duration
}

// ObjectMetadata contains detailed metadata about an S3 object.
type ObjectMetadata struct {
	// ContentType is the MIME type of the object
	ContentType string

	// ContentLength is the size of the object in bytes
	ContentLength int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// Metadata contains user-defined metadata
	Metadata map[string]string
}
