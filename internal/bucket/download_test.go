package bucket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3fetcherrors "s3fetch/internal/errors"
	"s3fetch/internal/testutil"
)

// trackedProgress records progress callbacks for assertions.
type trackedProgress struct {
	updates   int
	lastBytes int64
	total     int64
	completed bool
}

func (p *trackedProgress) Update(bytesTransferred, totalBytes int64) {
	p.updates++
	p.lastBytes = bytesTransferred
	p.total = totalBytes
}

func (p *trackedProgress) Complete() {
	p.completed = true
}

func getObjectWithBody(content string) func(
	context.Context, *s3.GetObjectInput, ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	return func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return &s3.GetObjectOutput{
			Body:          io.NopCloser(strings.NewReader(content)),
			ContentLength: aws.Int64(int64(len(content))),
			ETag:          aws.String(`"etag-abc"`),
		}, nil
	}
}

func TestClient_Download(t *testing.T) {
	t.Run("streams the object to the writer", func(t *testing.T) {
		mockClient := &testutil.MockS3Client{
			GetObjectFunc: getObjectWithBody("hello, bucket"),
		}

		client := NewWithClient(mockClient)
		var buf bytes.Buffer
		result, err := client.Download(context.Background(), "test-bucket", "data.txt", &buf)
		require.NoError(t, err)

		assert.Equal(t, "hello, bucket", buf.String())
		assert.Equal(t, "data.txt", result.Key)
		assert.Equal(t, int64(len("hello, bucket")), result.Size)
		assert.Equal(t, `"etag-abc"`, result.ETag)
	})

	t.Run("reports progress and completion", func(t *testing.T) {
		mockClient := &testutil.MockS3Client{
			GetObjectFunc: getObjectWithBody("0123456789"),
		}

		tracker := &trackedProgress{}
		client := NewWithClient(mockClient)
		var buf bytes.Buffer
		_, err := client.Download(context.Background(), "test-bucket", "data.txt", &buf,
			WithDownloadProgress(tracker),
		)
		require.NoError(t, err)

		assert.Positive(t, tracker.updates)
		assert.Equal(t, int64(10), tracker.lastBytes)
		assert.Equal(t, int64(10), tracker.total)
		assert.True(t, tracker.completed)
	})

	t.Run("missing object maps to ErrObjectNotFound", func(t *testing.T) {
		mockClient := &testutil.MockS3Client{
			GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, errors.New("api error NoSuchKey: the specified key does not exist")
			},
		}

		client := NewWithClient(mockClient)
		var buf bytes.Buffer
		_, err := client.Download(context.Background(), "test-bucket", "gone.txt", &buf)
		require.Error(t, err)
		assert.True(t, s3fetcherrors.IsObjectNotFound(err))
	})

	t.Run("input validation", func(t *testing.T) {
		client := NewWithClient(&testutil.MockS3Client{})
		var buf bytes.Buffer

		_, err := client.Download(context.Background(), "", "key", &buf)
		require.Error(t, err)
		assert.True(t, s3fetcherrors.IsInvalidInput(err))

		_, err = client.Download(context.Background(), "bucket", "", &buf)
		require.Error(t, err)
		assert.True(t, s3fetcherrors.IsInvalidInput(err))

		_, err = client.Download(context.Background(), "bucket", "key", nil)
		require.Error(t, err)
		assert.True(t, s3fetcherrors.IsInvalidInput(err))
	})
}

func TestClient_DownloadFile(t *testing.T) {
	t.Run("writes the object to disk", func(t *testing.T) {
		mockClient := &testutil.MockS3Client{
			GetObjectFunc: getObjectWithBody("csv,data,here"),
		}

		client := NewWithClient(mockClient)
		localPath := filepath.Join(t.TempDir(), "report.csv")

		result, err := client.DownloadFile(context.Background(), "test-bucket", "reports/report.csv", localPath)
		require.NoError(t, err)
		assert.Equal(t, int64(len("csv,data,here")), result.Size)

		content, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "csv,data,here", string(content))
	})

	t.Run("removes the partial file on failure", func(t *testing.T) {
		mockClient := &testutil.MockS3Client{
			GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, errors.New("connection reset")
			},
		}

		client := NewWithClient(mockClient)
		localPath := filepath.Join(t.TempDir(), "broken.csv")

		_, err := client.DownloadFile(context.Background(), "test-bucket", "broken.csv", localPath)
		require.Error(t, err)

		_, statErr := os.Stat(localPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("empty filepath is rejected", func(t *testing.T) {
		client := NewWithClient(&testutil.MockS3Client{})
		_, err := client.DownloadFile(context.Background(), "test-bucket", "key", "")
		require.Error(t, err)
		assert.True(t, s3fetcherrors.IsInvalidInput(err))
	})
}
