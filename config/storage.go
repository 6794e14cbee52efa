package config

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the S3 client used for storing images
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     S3API
	BucketName string
	// URLTTL selects presigned GET URLs with this lifetime. Zero returns the
	// public bucket URL.
	URLTTL    time.Duration
	presigner *s3.PresignClient
}

// NewS3Config initializes the S3 client from the default AWS credential chain
func NewS3Config(ctx context.Context, bucket, region string, urlTTL time.Duration) (*S3Config, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Config{
		Client:     client,
		BucketName: bucket,
		URLTTL:     urlTTL,
		presigner:  s3.NewPresignClient(client),
	}, nil
}

// Upload stores data under key and returns a URL the client can fetch it from
func (s *S3Config) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.URLTTL > 0 && s.presigner != nil {
		return s.presignedURL(ctx, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.BucketName, key), nil
}

func (s *S3Config) presignedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.URLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 URL: %w", err)
	}
	return req.URL, nil
}
