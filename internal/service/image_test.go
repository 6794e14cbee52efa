package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/testhelpers/mocks"
)

func imageServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("png-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImageServicePassThrough(t *testing.T) {
	gen := new(mocks.ImageGenerator)
	gen.On("GenerateImage", mock.Anything, "soup").Return("http://img/1", nil)

	svc := NewImageService(gen, nil, logger.Nop())

	url, err := svc.GenerateImage(context.Background(), "soup")
	require.NoError(t, err)
	assert.Equal(t, "http://img/1", url)
}

func TestImageServiceMirrors(t *testing.T) {
	srv := imageServer(t, http.StatusOK)
	gen := new(mocks.ImageGenerator)
	gen.On("GenerateImage", mock.Anything, "soup").Return(srv.URL+"/tmp.png", nil)
	store := &fakeStore{}

	svc := NewImageService(gen, store, logger.Nop())

	url, err := svc.GenerateImage(context.Background(), "soup")
	require.NoError(t, err)

	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], "dish-images/"))
	assert.True(t, strings.HasSuffix(store.keys[0], ".png"))
	assert.Equal(t, []byte("png-bytes"), store.data[0])
	assert.Equal(t, "https://bucket.s3.amazonaws.com/"+store.keys[0], url)
}

func TestImageServiceAcceptsImageAtLimit(t *testing.T) {
	srv := imageServer(t, http.StatusOK)
	gen := new(mocks.ImageGenerator)
	gen.On("GenerateImage", mock.Anything, "soup").Return(srv.URL+"/tmp.png", nil)
	store := &fakeStore{}

	svc := NewImageService(gen, store, logger.Nop())
	svc.maxBytes = int64(len("png-bytes"))

	_, err := svc.GenerateImage(context.Background(), "soup")
	require.NoError(t, err)
	require.Len(t, store.data, 1)
	assert.Equal(t, []byte("png-bytes"), store.data[0])
}

func TestImageServiceFallsBackToOriginalURL(t *testing.T) {
	t.Run("when download fails", func(t *testing.T) {
		srv := imageServer(t, http.StatusForbidden)
		gen := new(mocks.ImageGenerator)
		gen.On("GenerateImage", mock.Anything, "soup").Return(srv.URL+"/tmp.png", nil)
		store := &fakeStore{}

		url, err := NewImageService(gen, store, logger.Nop()).GenerateImage(context.Background(), "soup")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/tmp.png", url)
		assert.Empty(t, store.keys)
	})

	t.Run("when the image is too large", func(t *testing.T) {
		srv := imageServer(t, http.StatusOK)
		gen := new(mocks.ImageGenerator)
		gen.On("GenerateImage", mock.Anything, "soup").Return(srv.URL+"/tmp.png", nil)
		store := &fakeStore{}

		svc := NewImageService(gen, store, logger.Nop())
		svc.maxBytes = int64(len("png-bytes")) - 1

		url, err := svc.GenerateImage(context.Background(), "soup")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/tmp.png", url)
		assert.Empty(t, store.keys)
	})

	t.Run("when upload fails", func(t *testing.T) {
		srv := imageServer(t, http.StatusOK)
		gen := new(mocks.ImageGenerator)
		gen.On("GenerateImage", mock.Anything, "soup").Return(srv.URL+"/tmp.png", nil)

		svc := NewImageService(gen, &fakeStore{err: errors.New("access denied")}, logger.Nop())

		url, err := svc.GenerateImage(context.Background(), "soup")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/tmp.png", url)
	})
}

func TestImageServicePropagatesGeneratorErrors(t *testing.T) {
	gen := new(mocks.ImageGenerator)
	upstream := &UpstreamError{Op: "image generation", StatusCode: http.StatusTooManyRequests}
	gen.On("GenerateImage", mock.Anything, "soup").Return("", upstream)
	store := &fakeStore{}

	_, err := NewImageService(gen, store, logger.Nop()).GenerateImage(context.Background(), "soup")

	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, store.keys)
}
