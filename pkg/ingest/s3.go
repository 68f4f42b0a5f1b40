package ingest

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/facette/natsort"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/metadata"
)

// S3Config says where in S3 the metadata files live.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // optional; for S3-compatible stores
}

// S3API is the part of the S3 client that S3Source uses.
type S3API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

var _ Source = &S3Source{}

// S3Source reads metadata files from the objects under a prefix in an S3 bucket.
type S3Source struct {
	client S3API
	cfg    S3Config
}

// NewS3Source builds an S3 client from the default AWS configuration chain.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when no bucket is given
//   - noidwrap-error-remote-source -- when the AWS configuration cannot be loaded
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, noidapi.ErrorInvalid("an s3 source needs a bucket")
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					SigningRegion:     cfg.Region,
				}, nil
			})))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, noidapi.ErrorRemoteSource("s3://"+cfg.Bucket, err)
	}
	return NewS3SourceWithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

// NewS3SourceWithClient uses an existing client.
func NewS3SourceWithClient(client S3API, cfg S3Config) *S3Source {
	return &S3Source{client: client, cfg: cfg}
}

func (s *S3Source) String() string {
	return "s3://" + s.cfg.Bucket + "/" + s.cfg.Prefix
}

// List returns the keys under the prefix that look like metadata files, in natural sort order.
//
// Errors:
//
//   - noidwrap-error-remote-source -- when listing the bucket fails
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.cfg.Bucket)}
	if s.cfg.Prefix != "" {
		input.Prefix = aws.String(s.cfg.Prefix)
	}
	var keys []string
	pager := s3.NewListObjectsV2Paginator(s.client, input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, noidapi.ErrorRemoteSource(s.String(), err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if metadata.Supported(key) {
				keys = append(keys, key)
			}
		}
	}
	natsort.Sort(keys)
	return keys, nil
}

// Read downloads one object.
//
// Errors:
//
//   - noidwrap-error-remote-source -- when the download fails
func (s *S3Source) Read(ctx context.Context, key string) ([]byte, error) {
	downloader := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		d.Concurrency = 1
	})
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, noidapi.ErrorRemoteSource("s3://"+s.cfg.Bucket+"/"+key, err)
	}
	return buf.Bytes(), nil
}
