// Package publish uploads a built photo wall to an S3-compatible bucket.
package publish

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Config is the destination bucket.
type Config struct {
	Endpoint       string
	Region         string
	ForcePathStyle bool
	Bucket         string
	Prefix         string
	AccessKey      string
	SecretKey      string
}

// Cache policies. Pages and manifests change on every build; everything
// else is named after its content or source.
const (
	cacheDocument = "no-cache"
	cacheMedia    = "public, max-age=86400"
)

// PutObjectAPI is the part of the S3 client Publish needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient returns an S3 client for cfg. Static credentials are used when
// given, otherwise the default AWS credential chain.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""))
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// Key returns the object key for a path relative to the output root.
func Key(prefix string, rel string) string {
	rel = filepath.ToSlash(rel)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	switch filepath.Ext(name) {
	case ".wasm":
		return "application/wasm"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

func cacheControl(name string) string {
	switch filepath.Ext(name) {
	case ".html", ".json":
		return cacheDocument
	}
	return cacheMedia
}

// Publish uploads every file below dir and returns how many were sent.
func Publish(ctx context.Context, api PutObjectAPI, cfg Config, dir string) (int, error) {
	klog.Infof("publishing %s to s3://%s/%s", dir, cfg.Bucket, cfg.Prefix)
	n := 0

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(p string, de *godirwalk.Dirent) error {
			if p != dir && filepath.Base(p)[0] == '.' {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}
			if de.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			if err := upload(ctx, api, cfg, p, Key(cfg.Prefix, rel)); err != nil {
				return fmt.Errorf("upload %s: %w", rel, err)
			}
			n++
			return nil
		},
	})
	if err != nil {
		return n, err
	}

	klog.Infof("published %d files", n)
	return n, nil
}

func upload(ctx context.Context, api PutObjectAPI, cfg Config, p string, key string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	klog.V(1).Infof("put s3://%s/%s (%d bytes)", cfg.Bucket, key, st.Size())
	_, err = api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
		ContentType:   aws.String(contentType(p)),
		CacheControl:  aws.String(cacheControl(p)),
	})
	return err
}
