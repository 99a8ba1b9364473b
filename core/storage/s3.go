package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Storage issues presigned S3 URLs for event cover images. The API never
// proxies image bytes; clients upload directly against the presigned URL.
type Storage struct {
	presign *s3.PresignClient
	bucket  string
}

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

func New(cfg Config) *Storage {
	if cfg.Bucket == "" {
		logger.Warn("Storage disabled: no bucket configured")
		return nil
	}

	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		BaseEndpoint: optionalEndpoint(cfg.Endpoint),
	})

	return &Storage{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}
}

func optionalEndpoint(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return &endpoint
}

// PresignCoverUpload returns a short-lived PUT URL for an event cover image.
func (s *Storage) PresignCoverUpload(ctx context.Context, eventID, contentType string) (url, key string, err error) {
	if s == nil {
		return "", "", fmt.Errorf("storage is not configured")
	}

	key = fmt.Sprintf("event-covers/%s", eventID)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		logger.Error("Storage:PresignCoverUpload", "error", err, "event_id", eventID)
		return "", "", err
	}
	return req.URL, key, nil
}
