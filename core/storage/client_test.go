package storage_test

import (
	"context"
	"errors"
	"testing"

	"mod-manager/core/storage"
	"mod-manager/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"ValidConfig", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "game", Region: "us-east-1"}},
		{"EndpointWithHTTP", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"EndpointWithHTTPS", storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestVerify(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "game").Return(true, nil)
	client.On("BucketExists", mock.Anything, "missing").Return(false, nil)
	client.On("BucketExists", mock.Anything, "down").Return(false, errors.New("connection refused"))

	assert.NoError(t, storage.Verify(context.Background(), client, "game"))
	assert.Error(t, storage.Verify(context.Background(), client, "missing"))
	assert.Error(t, storage.Verify(context.Background(), client, "down"))
	client.AssertExpectations(t)
}
