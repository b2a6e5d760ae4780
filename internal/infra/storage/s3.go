// Package storage keeps appointment photos and payment vouchers in an S3
// compatible bucket, always as webp.
package storage

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Limits        Limits
}

// putter is the part of the s3 client the store uses.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3ImageStore struct {
	client  putter
	bucket  string
	baseURL string
	limits  Limits
}

func NewS3ImageStore(cfg S3Config) *S3ImageStore {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		limits:  cfg.Limits,
	}
}

// SaveImage converts the upload to webp and stores it under prefix with a
// random name.
func (s *S3ImageStore) SaveImage(ctx context.Context, prefix string, r io.Reader) (string, error) {
	body, err := ToWebP(r, s.limits)
	if err != nil {
		return "", err
	}

	key := strings.Trim(prefix, "/") + "/" + uuid.NewString() + ".webp"

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", httperr.Store("put object", err)
	}

	return s.baseURL + "/" + key, nil
}
