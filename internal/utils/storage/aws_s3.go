package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"glucolog/domain"
	"glucolog/internal/utils"
)

const (
	MealPhotoFolder = "meal-photos"
	MaxPhotoSize    = 10 << 20
)

var AllowImage = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"image/heic",
}

type (
	AwsS3 interface {
		Enabled() bool
		UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error)
		UploadBytes(ctx context.Context, fileName string, data []byte, folder string, allowed ...string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string

		// UploadPhoto stores a meal photo and returns its public URL.
		UploadPhoto(ctx context.Context, data []byte, contentType string) (string, error)
		// DeleteByURL removes an object previously returned by UploadPhoto.
		DeleteByURL(ctx context.Context, link string) error
	}

	objectAPI interface {
		PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
		DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	}

	awsS3 struct {
		client   objectAPI
		bucket   string
		region   string
		endpoint string
		now      func() time.Time
	}
)

// NewAwsS3 returns a disabled store when no bucket is configured; every
// operation then fails with domain.ErrStorageNotConfigured.
func NewAwsS3(ctx context.Context, cfg *utils.Config) (AwsS3, error) {
	if !cfg.S3Configured() {
		return newAwsS3(nil, "", "", ""), nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSS3Region)}
	if cfg.AWSAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSS3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newAwsS3(client, cfg.AWSS3Bucket, cfg.AWSS3Region, cfg.AWSS3Endpoint), nil
}

func newAwsS3(client objectAPI, bucket, region, endpoint string) *awsS3 {
	return &awsS3{
		client:   client,
		bucket:   bucket,
		region:   region,
		endpoint: strings.TrimRight(endpoint, "/"),
		now:      time.Now,
	}
}

func (a *awsS3) Enabled() bool {
	return a.client != nil
}

func (a *awsS3) UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	if file == nil {
		return "", domain.ErrFileRequired
	}
	if file.Size > MaxPhotoSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrFileTypeNotAllowed, MaxPhotoSize)
	}
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return a.UploadBytes(ctx, fileName, data, folder, allowed...)
}

func (a *awsS3) UploadBytes(ctx context.Context, fileName string, data []byte, folder string, allowed ...string) (string, error) {
	if !a.Enabled() {
		return "", domain.ErrStorageNotConfigured
	}
	if len(data) == 0 {
		return "", domain.ErrFileRequired
	}
	if len(data) > MaxPhotoSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrFileTypeNotAllowed, MaxPhotoSize)
	}

	// content is sniffed, the client's declared type is not trusted
	mtype := mimetype.Detect(data)
	if len(allowed) > 0 && !mimetype.EqualsAny(mtype.String(), allowed...) {
		return "", fmt.Errorf("%w: %s", domain.ErrFileTypeNotAllowed, mtype.String())
	}

	objectKey := path.Join(folder, fileName+mtype.Extension())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return objectKey, nil
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	if !a.Enabled() {
		return domain.ErrStorageNotConfigured
	}
	if objectKey == "" {
		return nil
	}
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectKey, err)
	}
	return nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	if a.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", a.endpoint, a.bucket, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}

// GetObjectKeyFromLink returns "" for links that do not point into the bucket.
func (a *awsS3) GetObjectKeyFromLink(link string) string {
	if !a.Enabled() || link == "" {
		return ""
	}
	prefix := a.GetPublicLinkKey("")
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return strings.TrimPrefix(link, prefix)
}

func (a *awsS3) UploadPhoto(ctx context.Context, data []byte, _ string) (string, error) {
	if !a.Enabled() {
		return "", domain.ErrStorageNotConfigured
	}
	fileName := fmt.Sprintf("meal-%s-%s", a.now().UTC().Format("20060102"), uuid.NewString())
	objectKey, err := a.UploadBytes(ctx, fileName, data, MealPhotoFolder, AllowImage...)
	if err != nil {
		return "", err
	}
	return a.GetPublicLinkKey(objectKey), nil
}

func (a *awsS3) DeleteByURL(ctx context.Context, link string) error {
	key := a.GetObjectKeyFromLink(link)
	if key == "" {
		return nil
	}
	return a.DeleteFile(ctx, key)
}
