package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client is a mock implementation of the S3 client for testing.
type mockS3Client struct {
	putObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	getObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getObjectFunc != nil {
		return m.getObjectFunc(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(""))}, nil
}

func TestImageKey(t *testing.T) {
	assert.Equal(t, "42/product.png", ImageKey(42))
}

func TestImageStore_Put(t *testing.T) {
	t.Run("writes the image under the product key", func(t *testing.T) {
		// given
		var written []byte
		client := &mockS3Client{
			putObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				assert.Equal(t, "product-images", *params.Bucket)
				assert.Equal(t, "7/product.png", *params.Key)
				assert.Equal(t, int64(4), *params.ContentLength)
				var err error
				written, err = io.ReadAll(params.Body)
				require.NoError(t, err)
				return &s3.PutObjectOutput{}, nil
			},
		}

		// when
		err := NewImageStore(client, "product-images").Put(context.Background(), 7, []byte("\x89PNG"))

		// then
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), written)
	})

	t.Run("put failure is an upstream error", func(t *testing.T) {
		// given
		client := &mockS3Client{
			putObjectFunc: func(_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				return nil, errors.New("access denied")
			},
		}

		// when
		err := NewImageStore(client, "product-images").Put(context.Background(), 7, []byte("x"))

		// then
		var upstreamErr *apperr.UpstreamError
		require.True(t, errors.As(err, &upstreamErr))
		assert.Equal(t, "s3", upstreamErr.Dependency)
	})
}

func TestImageStore_Get(t *testing.T) {
	t.Run("returns the stored bytes", func(t *testing.T) {
		// given
		client := &mockS3Client{
			getObjectFunc: func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				assert.Equal(t, "7/product.png", *params.Key)
				return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("image"))}, nil
			},
		}

		// when
		body, err := NewImageStore(client, "product-images").Get(context.Background(), 7)

		// then
		require.NoError(t, err)
		defer body.Close()
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "image", string(data))
	})

	t.Run("missing object is not found", func(t *testing.T) {
		// given
		client := &mockS3Client{
			getObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, &types.NoSuchKey{}
			},
		}

		// when
		_, err := NewImageStore(client, "product-images").Get(context.Background(), 7)

		// then
		require.Error(t, err)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("other failures are upstream errors", func(t *testing.T) {
		// given
		client := &mockS3Client{
			getObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, errors.New("timeout")
			},
		}

		// when
		_, err := NewImageStore(client, "product-images").Get(context.Background(), 7)

		// then
		require.Error(t, err)
		assert.False(t, apperr.IsNotFound(err))
		var upstreamErr *apperr.UpstreamError
		assert.True(t, errors.As(err, &upstreamErr))
	})
}
