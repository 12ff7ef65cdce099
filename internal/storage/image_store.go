package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
)

const (
	dependencyName = "s3"
	imageMimeType  = "image/png"
)

// ObjectAPI defines the S3 operations used by ImageStore.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ImageStore keeps one image per product in an S3 bucket.
type ImageStore struct {
	client ObjectAPI
	bucket string
}

// NewImageStore creates a new ImageStore for the given bucket.
func NewImageStore(client ObjectAPI, bucket string) *ImageStore {
	return &ImageStore{
		client: client,
		bucket: bucket,
	}
}

// ImageKey is the object key of a product's image.
func ImageKey(productID int64) string {
	return strconv.FormatInt(productID, 10) + "/" + model.ProductImageFilename
}

// Put writes the image, replacing any previous one.
func (s *ImageStore) Put(ctx context.Context, productID int64, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(ImageKey(productID)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(imageMimeType),
	})
	if err != nil {
		return apperr.Upstream(dependencyName, "put object", err)
	}
	return nil
}

// Get opens the product's image. The caller closes the returned reader.
func (s *ImageStore) Get(ctx context.Context, productID int64) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ImageKey(productID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("product image", productID)
		}
		return nil, apperr.Upstream(dependencyName, "get object", err)
	}
	return out.Body, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
