package specdoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// R2Source reads the document from Cloudflare R2.
// R2 is S3-compatible, so we use the AWS SDK v2 with custom configuration.
type R2Source struct {
	client *s3.Client
	bucket string
	key    string
}

// NewR2Source creates an R2Source for the given bucket and object key.
//
// The R2 endpoint URL is constructed from the account ID.
func NewR2Source(cfg R2Config, key string) (*R2Source, error) {
	key = normalizeLocation(key)
	if key == "" || strings.Contains(key, "..") {
		return nil, ErrInvalidSource
	}
	if cfg.AccountID == "" || cfg.BucketName == "" {
		return nil, errors.New("specdoc: incomplete R2 configuration")
	}

	// Format: https://{account_id}.r2.cloudflarestorage.com
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"", // session token not needed for R2
	)

	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		},
	)

	awsCfg := aws.Config{
		Region:                      "auto",
		Credentials:                 creds,
		EndpointResolverWithOptions: customResolver,
	}

	return &R2Source{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.BucketName,
		key:    key,
	}, nil
}

// Load downloads the document object.
func (s *R2Source) Load(ctx context.Context) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, wrapS3Error(err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// wrapS3Error converts S3 SDK errors to specdoc errors.
func wrapS3Error(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return ErrNotFound
		}
	}

	return fmt.Errorf("specdoc: R2 request failed: %w", err)
}
