package aws

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/opticini/opticini-cli/internal/domain/repository"
)

// S3Uploader copies exported report files to a bucket.
type S3Uploader struct {
	repo    *AWSRepositoryImpl
	profile string
}

// NewS3Uploader uses the same config and client cache as the repository.
func NewS3Uploader(repo *AWSRepositoryImpl, profile string) repository.UploadRepository {
	return &S3Uploader{repo: repo, profile: profile}
}

// Upload puts the file at path under key and returns its s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, path, bucket, key string) (string, error) {
	client, err := u.repo.getServiceClient(ctx, u.profile, "", "s3")
	if err != nil {
		return "", err
	}
	s3Client := client.(*s3.Client)

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s3Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", filepath.Base(path), bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
