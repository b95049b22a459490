package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig describes how to reach an S3-compatible endpoint.
type ClientConfig struct {
	// Region is the AWS region. Required by the SDK even for non-AWS backends.
	Region string

	// Endpoint overrides the service endpoint, e.g. "http://localhost:4566".
	Endpoint string

	// UsePathStyle selects path-style addressing, which LocalStack and a
	// default MinIO install need.
	UsePathStyle bool

	// Credentials overrides the default credential chain when non-nil.
	Credentials aws.CredentialsProvider
}

// NewClient builds an *s3.Client from cfg on top of the SDK's default
// configuration chain.
//
//	client, err := s3.NewClient(ctx, s3.ClientConfig{Region: "us-east-1"})
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Credentials != nil {
		opts = append(opts, config.WithCredentialsProvider(cfg.Credentials))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, cfg.apply), nil
}

func (cfg ClientConfig) apply(o *s3.Options) {
	if cfg.Endpoint != "" {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	o.UsePathStyle = cfg.UsePathStyle
}

// NewLocalStackClient returns a client for LocalStack on its default port
// with the test/test credentials it accepts.
func NewLocalStackClient(ctx context.Context) (*s3.Client, error) {
	return NewClient(ctx, ClientConfig{
		Region:       "us-east-1",
		Endpoint:     "http://localhost:4566",
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
	})
}

// NewMinIOClient returns a client for a local MinIO with default credentials.
func NewMinIOClient(ctx context.Context) (*s3.Client, error) {
	return NewClient(ctx, ClientConfig{
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("minioadmin", "minioadmin", ""),
	})
}
