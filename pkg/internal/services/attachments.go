package services

import (
	"context"
	"fmt"
	"io"
	"mime"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

var storage *minio.Client

// SetupStorage connects the object storage used for avatar images. Optional:
// when unconfigured, avatar upload endpoints report unavailability.
func SetupStorage() error {
	endpoint := viper.GetString("storage.endpoint")
	if len(endpoint) == 0 {
		return nil
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			viper.GetString("storage.access_key"),
			viper.GetString("storage.secret_key"),
			"",
		),
		Secure: viper.GetBool("storage.secure"),
	})
	if err != nil {
		return err
	}

	storage = client
	return nil
}

// UploadAvatar stores an avatar image and returns its public URL, which is
// only ever consumed as display metadata.
func UploadAvatar(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	if storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	object := fmt.Sprintf("avatars/%s%s", uuid.NewString(), ext)
	bucket := viper.GetString("storage.bucket")

	if _, err := storage.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("unable to upload avatar: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", viper.GetString("storage.public_url"), bucket, object), nil
}
