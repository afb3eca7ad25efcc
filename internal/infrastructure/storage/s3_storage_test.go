package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/erp/erpsync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials return error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", SecretKey: "s"})
		assert.ErrorContains(t, err, "access key is required")
		_, err = NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k"})
		assert.ErrorContains(t, err, "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		store, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:       "images",
			AccessKey:    "k",
			SecretKey:    "s",
			Endpoint:     "localhost:9000",
			UsePathStyle: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "images", store.GetBucket())
	})
}

func TestS3ObjectStorage_Put(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "images",
		Prefix:       "erpsync",
		AccessKey:    "k",
		SecretKey:    "s",
		Endpoint:     server.URL,
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	key, err := store.Put(context.Background(), "t/product/1/image/abc-image.png", []byte("payload"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "erpsync/t/product/1/image/abc-image.png", key)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/images/erpsync/t/product/1/image/abc-image.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, string(gotBody), "payload")
}
