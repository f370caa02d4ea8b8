package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 serves path-style PUT/GET/HEAD/DELETE for a single bucket
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			}
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T, endpoint string, maxSize int64) *S3DocumentStore {
	t.Helper()
	store, err := NewS3DocumentStore(&config.StorageConfig{
		Endpoint:      endpoint,
		Bucket:        "nexus-test",
		AccessKey:     "test-key",
		SecretKey:     "test-secret",
		UsePathStyle:  true,
		MaxUploadSize: maxSize,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return store
}

func TestNewS3DocumentStore_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3DocumentStore(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3DocumentStore(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials return error", func(t *testing.T) {
		_, err := NewS3DocumentStore(&config.StorageConfig{Bucket: "b", SecretKey: "s"})
		assert.ErrorContains(t, err, "access key is required")
		_, err = NewS3DocumentStore(&config.StorageConfig{Bucket: "b", AccessKey: "k"})
		assert.ErrorContains(t, err, "secret key is required")
	})

	t.Run("defaults presign expiration", func(t *testing.T) {
		store := newTestStore(t, "localhost:9000", 0)
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
		assert.Equal(t, "nexus-test", store.Bucket())
	})

	t.Run("option overrides presign expiration", func(t *testing.T) {
		store, err := NewS3DocumentStore(&config.StorageConfig{
			Bucket: "b", AccessKey: "k", SecretKey: "s",
		}, WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.presignExpiration)
	})
}

func TestS3DocumentStore_GenerateDownloadURL(t *testing.T) {
	store := newTestStore(t, "http://localhost:9000", 0)
	ctx := context.Background()

	u, expiresAt, err := store.GenerateDownloadURL(ctx, "documents/u/d/invoice.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "/nexus-test/documents/u/d/invoice.pdf")
	assert.Contains(t, u, "X-Amz-Expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	_, _, err = store.GenerateDownloadURL(ctx, "", 0)
	assert.Error(t, err)
}

func TestS3DocumentStore_RoundTrip(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestStore(t, server.URL, 1024)
	ctx := context.Background()
	key := "documents/user/doc/po.pdf"

	require.NoError(t, store.Upload(ctx, key, []byte("%PDF-1.7 test"), "application/pdf"))

	data, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 test"), data)

	exists, err := store.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.DeleteObject(ctx, key))
	_, err = store.Download(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	exists, err = store.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestS3DocumentStore_DownloadRejectsOversizedObject(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"nexus-test/big.png": make([]byte, 64)}}
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestStore(t, server.URL, 16)
	_, err := store.Download(context.Background(), "big.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestS3DocumentStore_EmptyKeys(t *testing.T) {
	store := newTestStore(t, "http://localhost:9000", 0)
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "", nil, "application/pdf"))
	_, err := store.Download(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.DeleteObject(ctx, ""))
	_, err = store.ObjectExists(ctx, "")
	assert.Error(t, err)
}
