package storage_test

import (
	"testing"

	"storagebox/core/storage"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"Plain", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "storagebox"}, false},
		{"HTTPScheme", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}, false},
		{"HTTPSScheme", storage.Config{Endpoint: "https://s3.amazonaws.com", UseSSL: true, Region: "us-east-1"}, false},
		{"CustomTimeout", storage.Config{Endpoint: "localhost:9000", TimeoutSeconds: 2}, false},
		{"EmptyEndpoint", storage.Config{Endpoint: "http://"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
