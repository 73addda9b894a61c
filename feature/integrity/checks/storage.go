package checks

import (
	"context"
	"fmt"

	"storagebox/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport is the result of the bucket check.
type StorageReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
	// Lists is the number of objects available for import, counted up to a limit.
	Lists int `json:"lists"`
}

// maxListedObjects bounds the object count of a storage check.
const maxListedObjects = 1000

// CheckStorage verifies that the bucket exists and counts its objects.
func CheckStorage(ctx context.Context, client storage.Client, bucket string) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	report := &StorageReport{Bucket: bucket, Exists: exists}
	if !exists {
		return report, nil
	}

	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true, MaxKeys: maxListedObjects}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, obj.Err)
		}
		report.Lists++
		if report.Lists >= maxListedObjects {
			break
		}
	}
	return report, nil
}

// FixStorage creates the bucket.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Created missing bucket", zap.String("bucket", bucket))
	return nil
}
