package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageExtension(t *testing.T) {
	tests := []struct {
		contentType string
		ext         string
		ok          bool
	}{
		{"image/jpeg", ".jpg", true},
		{"IMAGE/PNG", ".png", true},
		{"image/webp", ".webp", true},
		{"image/gif", "", false},
		{"application/pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ext, ok := ImageExtension(tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestNewS3Uploader(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err, "bucket is required")

	u, err := NewS3Uploader(context.Background(), S3Config{
		Bucket:          "rooms",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PublicBaseURL:   "http://cdn.example.com/rooms/",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/rooms", u.publicBaseURL)
}
