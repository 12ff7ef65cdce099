// Package awsclient builds the AWS SDK clients the catalog talks to from one shared configuration.
package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdkconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/product-catalog/internal/config"
)

// Load resolves credentials and region once. A non-empty endpoint (LocalStack) overrides
// the service endpoints of every client built from the result.
func Load(ctx context.Context, conf config.AWSConfig) (aws.Config, error) {
	awsCfg, err := sdkconfig.LoadDefaultConfig(ctx,
		sdkconfig.WithRegion(conf.Region),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if conf.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(conf.Endpoint)
	}
	return awsCfg, nil
}

// NewSQS creates the queue client used by the publisher and the consumer.
func NewSQS(awsCfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(awsCfg)
}

// NewS3 creates the object store client. A custom endpoint switches to path-style addressing.
func NewS3(awsCfg aws.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = awsCfg.BaseEndpoint != nil
	})
}
