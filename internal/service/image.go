package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tastebook/backend/config"
)

// ImageService stores recipe images submitted as base64 data URIs in S3 and
// returns their public URLs.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// Resolve turns a submitted image value into a stored URL. Plain URLs (and
// empty values) pass through unchanged; a "data:image/..." payload is decoded
// and uploaded. When no storage is configured the raw value is kept, so local
// setups keep working without S3 credentials.
func (s *ImageService) Resolve(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:image") {
		return image, nil
	}
	if s == nil || s.s3Config == nil {
		return image, nil
	}

	header, encoded, found := strings.Cut(image, ";base64,")
	if !found {
		return "", NewValidationError("image", "malformed image data URI")
	}
	ext := header[strings.LastIndex(header, "/")+1:]

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", NewValidationError("image", "invalid base64 image data")
	}

	key := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)
	return s.upload(ctx, data, key, "image/"+ext)
}

func (s *ImageService) upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}
