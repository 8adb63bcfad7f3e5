package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/shashiranjanraj/paintpos/config"
)

// s3Disk is the S3-compatible object storage driver.
type s3Disk struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func newS3Disk(ctx context.Context) (*s3Disk, error) {
	bucket := config.Get("S3_BUCKET", "")
	region := config.Get("S3_REGION", "ap-southeast-1")
	key := config.Get("S3_KEY", "")
	secret := config.Get("S3_SECRET", "")
	endpoint := config.Get("S3_ENDPOINT", "") // empty for real AWS
	baseURL := strings.TrimRight(config.Get("S3_URL", ""), "/")

	if bucket == "" {
		return nil, fmt.Errorf("storage/s3: S3_BUCKET is not configured")
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	if key != "" && secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &s3Disk{
		client:  s3.NewFromConfig(cfg, clientOpts...),
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

func (d *s3Disk) Put(ctx context.Context, path string, content []byte, contentType string) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: put %s: %w", path, err)
	}
	return nil
}

func (d *s3Disk) Get(ctx context.Context, path string) ([]byte, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("storage/s3: get %s: %w", path, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (d *s3Disk) Exists(ctx context.Context, path string) (bool, error) {
	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("storage/s3: head %s: %w", path, err)
}

func (d *s3Disk) Delete(ctx context.Context, path string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", path, err)
	}
	return nil
}

func (d *s3Disk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}
