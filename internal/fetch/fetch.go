// Package fetch orchestrates a download run: it snapshots the bucket listing,
// applies the selection criteria, and downloads the selected objects
// sequentially into a local directory.
//
// Individual download failures do not abort the run; they are recorded in the
// summary and the run continues with the next selected object. Criteria
// validation failures abort before any download attempt.
package fetch

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"s3fetch/internal/bucket"
	"s3fetch/internal/errors"
	"s3fetch/internal/selector"
)

// BucketAPI is the subset of the bucket client the runner needs.
type BucketAPI interface {
	// ListAll fetches a complete listing snapshot under the prefix
	ListAll(ctx context.Context, bucketName, prefix string) ([]selector.Object, error)

	// DownloadFile streams one object to a local file
	DownloadFile(
		ctx context.Context,
		bucketName, key, filepath string,
		opts ...bucket.DownloadOption,
	) (*bucket.DownloadResult, error)
}

// Runner executes list and download runs against a single bucket.
type Runner struct {
	client BucketAPI
	bucket string
	prefix string
	dir    string
	log    zerolog.Logger

	// now is the reference instant source, overridable in tests
	now func() time.Time
}

// NewRunner creates a runner for the given bucket and prefix that downloads
// into dir.
func NewRunner(client BucketAPI, bucketName, prefix, dir string, log zerolog.Logger) *Runner {
	return &Runner{
		client: client,
		bucket: bucketName,
		prefix: prefix,
		dir:    dir,
		log:    log,
		now:    time.Now,
	}
}

// Result records the outcome of one object download.
type Result struct {
	// Key is the remote object key
	Key string

	// Path is the local file the object was written to (empty on failure)
	Path string

	// Size is the number of bytes written (0 on failure)
	Size int64

	// Err is the per-object failure, nil on success
	Err error
}

// Summary reports the outcome of a run, distinguishing succeeded from failed
// downloads.
type Summary struct {
	// Selected is the number of objects the criteria matched
	Selected int

	// TotalBytes is the aggregate size of the selection
	TotalBytes int64

	// Succeeded holds the completed downloads in execution order
	Succeeded []Result

	// Failed holds the downloads that errored, in execution order
	Failed []Result

	// BytesFetched is the total bytes actually written
	BytesFetched int64
}

// List snapshots the bucket listing and returns the selection the criteria
// produce, without downloading anything.
func (r *Runner) List(ctx context.Context, criteria selector.Criteria) (selector.Selection, error) {
	if err := criteria.Validate(); err != nil {
		return selector.Selection{}, err
	}

	objects, err := r.client.ListAll(ctx, r.bucket, r.prefix)
	if err != nil {
		return selector.Selection{}, err
	}

	return selector.Select(objects, criteria, r.now().UTC())
}

// Run lists the bucket, selects objects per the criteria, and downloads them
// one at a time in selection order. Criteria validation errors abort the run
// before any download; per-object download failures are logged and recorded
// in the summary while the run continues.
func (r *Runner) Run(ctx context.Context, criteria selector.Criteria) (*Summary, error) {
	selection, err := r.List(ctx, criteria)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Selected:   len(selection.Objects),
		TotalBytes: selection.TotalBytes,
	}

	if len(selection.Objects) == 0 {
		r.log.Info().
			Str("bucket", r.bucket).
			Str("prefix", r.prefix).
			Msg("no objects matched the criteria")
		return summary, nil
	}

	r.log.Info().
		Str("bucket", r.bucket).
		Int("objects", summary.Selected).
		Str("total_size", humanize.Bytes(uint64(summary.TotalBytes))).
		Msg("downloading selection")

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, errors.NewError("run", err).
			WithBucket(r.bucket).
			WithMessage("failed to create download directory " + r.dir)
	}

	for _, obj := range selection.Objects {
		localPath := filepath.Join(r.dir, LocalFileName(obj.Key))

		result, err := r.client.DownloadFile(ctx, r.bucket, obj.Key, localPath)
		if err != nil {
			r.log.Error().
				Err(err).
				Str("key", obj.Key).
				Msg("download failed, continuing with next object")
			summary.Failed = append(summary.Failed, Result{Key: obj.Key, Err: err})
			continue
		}

		r.log.Info().
			Str("key", obj.Key).
			Str("path", localPath).
			Str("size", humanize.Bytes(uint64(result.Size))).
			Dur("took", result.Duration).
			Msg("downloaded")

		if r.log.GetLevel() <= zerolog.DebugLevel {
			if mt, derr := mimetype.DetectFile(localPath); derr == nil {
				r.log.Debug().
					Str("key", obj.Key).
					Str("content_type", mt.String()).
					Msg("detected content type")
			}
		}

		summary.Succeeded = append(summary.Succeeded, Result{
			Key:  obj.Key,
			Path: localPath,
			Size: result.Size,
		})
		summary.BytesFetched += result.Size
	}

	r.log.Info().
		Int("succeeded", len(summary.Succeeded)).
		Int("failed", len(summary.Failed)).
		Str("fetched", humanize.Bytes(uint64(summary.BytesFetched))).
		Msg("run complete")

	return summary, nil
}

// LocalFileName derives the local filename for an object key.
// The base name of the key is used; keys without a usable base name (for
// example keys ending in "/") fall back to the full key with path separators
// replaced by underscores.
func LocalFileName(key string) string {
	base := path.Base(key)
	if base == "" || base == "." || base == "/" {
		return strings.ReplaceAll(strings.Trim(key, "/"), "/", "_")
	}
	return base
}
