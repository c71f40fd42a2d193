package s3store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/infrastructure/storage"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	Prefix        string
	PublicBaseURL string
}

// Storage keeps uploads in an S3 bucket. File URLs are PublicBaseURL/<key>.
type Storage struct {
	client  objectAPI
	bucket  string
	prefix  string
	baseURL string
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return newStorage(client, cfg.Bucket, cfg.Prefix, baseURL), nil
}

func newStorage(client objectAPI, bucket, prefix, baseURL string) *Storage {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		baseURL = strings.TrimRight(baseURL, "/") + "/" + prefix
		prefix += "/"
	}
	return &Storage{client: client, bucket: bucket, prefix: prefix, baseURL: baseURL}
}

func (s *Storage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (domain.StoredFile, error) {
	key := storage.NewKey(filename)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return domain.StoredFile{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return domain.StoredFile{URL: storage.URLFor(s.baseURL, key), Key: s.prefix + key}, nil
}

func (s *Storage) Open(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	key, err := storage.KeyFromURL(s.baseURL, fileURL)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}
