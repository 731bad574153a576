package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/allape/gogger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var l = gogger.New("storage")

type MinioConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// S3 saves exported files as objects under Prefix in Bucket.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 connects to an S3 compatible endpoint such as MinIO and makes sure the
// bucket exists.
func NewS3(ctx context.Context, cfg MinioConfig) (*S3, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(cfg.Bucket),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		l.Verbose().Println("created bucket:", cfg.Bucket)
	}

	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key is the object key a file called name is stored under.
func (s *S3) Key(name string) string {
	return path.Join(s.prefix, name)
}

// Save puts r under Key(name). Bodies that cannot seek are buffered first;
// the checksum middleware rejects them over plain HTTP.
func (s *S3) Save(ctx context.Context, name string, r io.Reader) error {
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		body = bytes.NewReader(data)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(name)),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.Key(name), err)
	}
	l.Verbose().Println("uploaded:", s.Key(name))
	return nil
}

// UploadDir uploads the regular files in dir whose extension is ext.
// Files that fail are logged and skipped; the number uploaded is returned.
func (s *S3) UploadDir(ctx context.Context, dir, ext string) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ext {
			continue
		}
		if err := s.uploadFile(ctx, filepath.Join(dir, f.Name())); err != nil {
			l.Error().Println("failed to upload", f.Name(), err)
			continue
		}
		n++
	}
	return n, nil
}

func (s *S3) uploadFile(ctx context.Context, fpath string) error {
	file, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.Save(ctx, filepath.Base(fpath), file)
}
