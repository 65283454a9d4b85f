package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

const (
	csvContentType = "text/csv"
	defaultRegion  = "us-east-1"
)

// MinioUploader puts the report into an S3-compatible bucket.
type MinioUploader struct{}

// NewMinioUploader creates the uploader. Clients are built per upload since
// the target comes from the run settings.
func NewMinioUploader() *MinioUploader {
	return &MinioUploader{}
}

func (u *MinioUploader) Upload(
	ctx context.Context,
	upload entities.UploadSettings,
	localPath string,
) error {
	region := upload.Region
	if region == "" {
		region = defaultRegion
	}

	//nolint:exhaustruct // defaults are fine for the remaining options
	client, err := minio.New(upload.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(upload.AccessKey, upload.SecretKey, ""),
		Secure: upload.Secure,
		Region: region,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage client for %q: %w", upload.Endpoint, err)
	}

	object := upload.Object
	if object == "" {
		object = filepath.Base(localPath)
	}

	//nolint:exhaustruct // only the content type is set
	info, err := client.FPutObject(ctx, upload.Bucket, object, localPath, minio.PutObjectOptions{
		ContentType: csvContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %q to %s/%s: %w", localPath, upload.Bucket, object, err)
	}

	logger.Infof("Report uploaded to %s/%s (%d bytes)", upload.Bucket, object, info.Size)
	return nil
}
