package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads to a bucket. A custom endpoint switches to path style
// addressing for MinIO and similar servers.
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
	region   string
	endpoint string
}

func NewS3Store(ctx context.Context, region, bucket, endpoint string) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, folder string, a Asset) (*StoredAsset, error) {
	key := path.Join(folder, utils.ObjectName(a.Name))
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        a.Body,
		ContentType: aws.String(a.ContentType),
	})
	if err != nil {
		return nil, apperrors.Internal(err, "failed to upload asset")
	}

	return &StoredAsset{
		URL:         s.publicURL(key, out.Location),
		Name:        a.Name,
		ContentType: a.ContentType,
		Size:        a.Size,
	}, nil
}

func (s *S3Store) publicURL(key, location string) string {
	if location != "" {
		return location
	}
	if s.endpoint != "" {
		u, err := url.JoinPath(s.endpoint, s.bucket, key)
		if err == nil {
			return u
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, url.PathEscape(key))
}
