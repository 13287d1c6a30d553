package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	infraconfig "github.com/britrip/hotelier/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestInlineAssetStore(t *testing.T) {
	s := NewInlineAssetStore()

	t.Run("sniffs undeclared content", func(t *testing.T) {
		ref, err := s.Store(context.Background(), "ignored", consoleapp.Asset{Data: pngHeader})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))

		back, err := DecodeDataURI(ref)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, back.Data)
		assert.Equal(t, "image/png", back.ContentType)
	})

	t.Run("rejects empty and non-image content", func(t *testing.T) {
		_, err := s.Store(context.Background(), "k", consoleapp.Asset{})
		assert.ErrorIs(t, err, ErrEmptyAsset)
		_, err = s.Store(context.Background(), "k", consoleapp.Asset{Data: []byte("hello"), ContentType: "text/plain"})
		assert.ErrorIs(t, err, ErrNotImage)
	})
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no scheme", "image/png;base64,AAAA"},
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:image/png,plain"},
		{"bad payload", "data:image/png;base64,***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURI(tt.uri)
			assert.ErrorIs(t, err, ErrBadDataURI)
		})
	}
}

func TestNewS3AssetStore_Validation(t *testing.T) {
	_, err := NewS3AssetStore(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewS3AssetStore(context.Background(), &infraconfig.StorageConfig{Driver: "s3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

type fakeS3 struct {
	mu       sync.Mutex
	paths    []string
	types    []string
	statuses map[string]int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Method == http.MethodPut && r.URL.Path != "/photos" {
		f.paths = append(f.paths, r.URL.Path)
		f.types = append(f.types, r.Header.Get("Content-Type"))
	}
	if code, ok := f.statuses[r.Method]; ok {
		w.WriteHeader(code)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newTestS3Store(t *testing.T, srv *httptest.Server, publicBase string) *S3AssetStore {
	t.Helper()
	s, err := NewS3AssetStore(context.Background(), &infraconfig.StorageConfig{
		Driver:          "s3",
		Bucket:          "photos",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
		PublicBaseURL:   publicBase,
	})
	require.NoError(t, err)
	return s
}

func TestS3AssetStore_Store(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	t.Run("public base URL", func(t *testing.T) {
		s := newTestS3Store(t, srv, "https://cdn.britrip.test/")
		ref, err := s.Store(context.Background(), "sess-1/photo-1", consoleapp.Asset{Data: pngHeader, ContentType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.britrip.test/sess-1/photo-1.png", ref)
		assert.Equal(t, "photos", s.Bucket())
	})

	t.Run("presigned URL", func(t *testing.T) {
		s := newTestS3Store(t, srv, "")
		ref, err := s.Store(context.Background(), "sess-1/photo-2", consoleapp.Asset{Data: pngHeader})
		require.NoError(t, err)
		assert.Contains(t, ref, "/photos/sess-1/photo-2.png")
		assert.Contains(t, ref, "X-Amz-Signature=")
	})

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{"/photos/sess-1/photo-1.png", "/photos/sess-1/photo-2.png"}, fake.paths)
	assert.Equal(t, []string{"image/png", "image/png"}, fake.types)
}

func TestS3AssetStore_Errors(t *testing.T) {
	fake := &fakeS3{statuses: map[string]int{http.MethodPut: http.StatusForbidden}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	s := newTestS3Store(t, srv, "")

	_, err := s.Store(context.Background(), "", consoleapp.Asset{Data: pngHeader})
	assert.Error(t, err)
	_, err = s.Store(context.Background(), "k", consoleapp.Asset{Data: []byte("text"), ContentType: "text/plain"})
	assert.ErrorIs(t, err, ErrNotImage)
	_, err = s.Store(context.Background(), "k", consoleapp.Asset{Data: pngHeader})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload photo")
}

func TestS3AssetStore_EnsureBucket(t *testing.T) {
	srv := httptest.NewServer(&fakeS3{})
	defer srv.Close()
	s := newTestS3Store(t, srv, "")
	assert.NoError(t, s.EnsureBucket(context.Background()))
}

func TestNew_SelectsDriver(t *testing.T) {
	store, err := New(context.Background(), &infraconfig.StorageConfig{Driver: "inline"}, nil)
	require.NoError(t, err)
	_, ok := store.(*InlineAssetStore)
	assert.True(t, ok)
}
