// Package media uploads locally buffered files to an S3-compatible bucket and
// deletes them again by their public URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

var (
	ErrEmptyPath  = errors.New("media: local path is empty")
	ErrInvalidURL = errors.New("media: url does not belong to this store")
)

// Asset describes an uploaded object. Duration is only known for video when the
// uploader supplies it.
type Asset struct {
	URL      string
	Key      string
	Duration *float64
}

// Store is the media-hosting collaborator used by the user and video handlers.
type Store interface {
	Upload(ctx context.Context, localPath, folder string) (*Asset, error)
	Delete(ctx context.Context, assetURL string) (bool, error)
}

// objectAPI is the subset of *s3.Client the store calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps objects under <bucket>/<folder>/<ksuid><ext>.
type S3Store struct {
	client  objectAPI
	bucket  string
	baseURL string
	logger  *zap.SugaredLogger
}

// NewS3Store builds an S3 client for cfg. Static credentials are used when set,
// otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return newS3Store(client, cfg, logger), nil
}

func newS3Store(client objectAPI, cfg Config, logger *zap.SugaredLogger) *S3Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.publicBaseURL(), "/"),
		logger:  logger,
	}
}

// Upload streams localPath to the bucket and removes the local file whatever the outcome.
func (s *S3Store) Upload(ctx context.Context, localPath, folder string) (*Asset, error) {
	if localPath == "" {
		return nil, ErrEmptyPath
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnw("remove temp file", "path", localPath, "err", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	key := path.Join(folder, utilities.NewKSUID()+ext)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}
	s.logger.Debugw("media uploaded", "bucket", s.bucket, "key", key)
	return &Asset{URL: s.URLFor(key), Key: key}, nil
}

// Delete removes the object behind assetURL. It reports false when the URL was
// empty and there was nothing to delete.
func (s *S3Store) Delete(ctx context.Context, assetURL string) (bool, error) {
	if assetURL == "" {
		return false, nil
	}
	key, err := s.KeyFor(assetURL)
	if err != nil {
		return false, err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return false, fmt.Errorf("delete object %s: %w", key, err)
	}
	s.logger.Debugw("media deleted", "bucket", s.bucket, "key", key)
	return true, nil
}

// URLFor returns the public URL of key.
func (s *S3Store) URLFor(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + key
}

// KeyFor is the inverse of URLFor.
func (s *S3Store) KeyFor(assetURL string) (string, error) {
	prefix := s.baseURL + "/" + s.bucket + "/"
	rest, ok := strings.CutPrefix(assetURL, prefix)
	if !ok || rest == "" {
		return "", ErrInvalidURL
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", ErrInvalidURL
	}
	return key, nil
}
