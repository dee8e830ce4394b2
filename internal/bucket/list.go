package bucket

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"s3fetch/internal/errors"
	"s3fetch/internal/s3api"
	"s3fetch/internal/selector"
)

// maxPageSize is the maximum page size allowed by ListObjectsV2.
const maxPageSize = 1000

// ListAll fetches a complete listing snapshot of the bucket under the given
// prefix. It transparently follows continuation tokens until the listing is
// exhausted, so the returned slice covers every matching object.
//
// The snapshot is the immutable input to selector.Select; no filtering
// happens here beyond the server-side prefix.
func (c *Client) ListAll(ctx context.Context, bucket, prefix string) ([]selector.Object, error) {
	if bucket == "" {
		return nil, errors.NewError("list", errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	var objects []selector.Object

	paginator := &paginator{
		client: c.s3Client,
		bucket: bucket,
		prefix: prefix,
	}

	for paginator.hasMorePages() {
		page, err := paginator.nextPage(ctx)
		if err != nil {
			if isAccessDenied(err) {
				return nil, errors.NewError("list", errors.ErrAccessDenied).WithBucket(bucket)
			}
			return nil, errors.NewError("list", err).WithBucket(bucket)
		}
		objects = append(objects, page...)
	}

	return objects, nil
}

// paginator walks a ListObjectsV2 result set page by page.
type paginator struct {
	client            s3api.S3API
	bucket            string
	prefix            string
	continuationToken *string
	started           bool
	truncated         bool
}

func (p *paginator) hasMorePages() bool {
	return !p.started || p.truncated
}

func (p *paginator) nextPage(ctx context.Context) ([]selector.Object, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		Prefix:  aws.String(p.prefix),
		MaxKeys: aws.Int32(maxPageSize),
	}
	if p.started && p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, err
	}

	p.started = true
	p.truncated = aws.ToBool(output.IsTruncated)
	p.continuationToken = output.NextContinuationToken

	objects := make([]selector.Object, 0, len(output.Contents))
	for _, obj := range output.Contents {
		objects = append(objects, selector.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified).UTC(),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	return objects, nil
}
