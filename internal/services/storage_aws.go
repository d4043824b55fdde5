package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// defaultAWSRegion is used when AWS_REGION is empty; the SDK refuses to sign
// without one.
const defaultAWSRegion = "us-east-1"

// AWSStoreFactory builds stores on aws-sdk-go-v2.
type AWSStoreFactory struct {
	UseSSL       bool
	UsePathStyle bool
}

func (f *AWSStoreFactory) NewStore(creds Credentials) (ObjectStore, error) {
	region := creds.Region
	if region == "" {
		region = defaultAWSRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(1),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			creds.AccessKey,
			creds.SecretKey,
			creds.SessionToken,
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = f.UsePathStyle
		},
	}
	// The SDK resolves the regional AWS endpoint itself; only custom
	// endpoints need to be pinned.
	if creds.Endpoint != "" && creds.Endpoint != "s3.amazonaws.com" {
		scheme := "https://"
		if !f.UseSSL {
			scheme = "http://"
		}
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(scheme + creds.Endpoint)
		})
	}

	return &awsStore{client: s3.NewFromConfig(awsCfg, opts...)}, nil
}

type awsStore struct {
	client *s3.Client
}

func (s *awsStore) PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(in.Bucket),
		Key:           aws.String(in.Key),
		Body:          in.Body,
		ContentLength: aws.Int64(in.Size),
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return PutObjectOutput{}, apiError(err)
	}
	return PutObjectOutput{
		ETag:      strings.Trim(aws.ToString(out.ETag), `"`),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// providerError keeps the SDK error in the chain but prints only the
// provider's code and message, which is what the status line shows.
type providerError struct {
	code    string
	message string
	err     error
}

func (e *providerError) Error() string {
	if e.message == "" {
		return e.code
	}
	return e.code + ": " + e.message
}

func (e *providerError) Unwrap() error {
	return e.err
}

func apiError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &providerError{code: apiErr.ErrorCode(), message: apiErr.ErrorMessage(), err: err}
	}
	return err
}
