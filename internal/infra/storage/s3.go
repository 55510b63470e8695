package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store writes reports to S3 or an S3-compatible endpoint.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*S3Store, error) {
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	var ep string
	if endpoint != "" {
		ep = scheme(useSSL) + "://" + normalizeEndpoint(endpoint)
		baseURL = ep + "/" + bucket
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ep != "" {
			o.BaseEndpoint = aws.String(ep)
			o.UsePathStyle = true // S3-compatible services
		}
	})

	return &S3Store{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// Put uploads body under key and returns the object URL.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
