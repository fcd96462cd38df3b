package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

// BucketService uploads generated scene images and hands back stable public
// URLs in the bucket's virtual-host form.
type BucketService interface {
	UploadPNG(ctx context.Context, key string, data []byte) (string, error)
	PublicURL(key string) string
}

type bucketService struct {
	log    *logger.Logger
	client *awss3.Client
	bucket string
	region string
}

func NewBucketService(ctx context.Context, log *logger.Logger) (BucketService, error) {
	region, err := envutil.Require("AWS_S3_REGION")
	if err != nil {
		return nil, err
	}
	bucket, err := envutil.Require("AWS_S3_BUCKET_NAME")
	if err != nil {
		return nil, err
	}
	accessKey, err := envutil.Require("AWS_S3_ACCESS_KEY")
	if err != nil {
		return nil, err
	}
	secretKey, err := envutil.Require("AWS_S3_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	serviceLog := log.With("service", "BucketService")
	serviceLog.Info("Object storage initialized", "bucket", bucket, "region", region)

	return &bucketService{
		log:    serviceLog,
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

func (b *bucketService) UploadPNG(ctx context.Context, key string, data []byte) (string, error) {
	_, err := b.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return b.PublicURL(key), nil
}

func (b *bucketService) PublicURL(key string) string {
	return VirtualHostURL(b.bucket, b.region, key)
}

// VirtualHostURL builds the public retrieval URL for an object.
func VirtualHostURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

// SceneKey is the deterministic object key for one scene image.
func SceneKey(pipelineID string, sceneNumber int) string {
	return fmt.Sprintf("%s/scene_%d.png", pipelineID, sceneNumber)
}
