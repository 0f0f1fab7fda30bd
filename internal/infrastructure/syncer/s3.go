package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"NewsDesk/internal/ports"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures an S3 syncer. Region, Profile and Endpoint are optional
// and fall back to the standard AWS configuration chain.
type S3Options struct {
	Root         string
	Bucket       string
	Prefix       string
	Region       string
	Profile      string
	Endpoint     string
	UsePathStyle bool
	Logger       *slog.Logger
}

// S3 mirrors changed paths into a bucket: existing files are uploaded,
// missing ones deleted.
type S3 struct {
	api    objectAPI
	root   string
	bucket string
	prefix string
	logger *slog.Logger
}

var _ ports.Syncer = (*S3)(nil)

// NewS3 creates an S3 syncer using the default AWS configuration chain.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket not configured")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return newS3(client, opts), nil
}

func newS3(api objectAPI, opts S3Options) *S3 {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{api: api, root: opts.Root, bucket: opts.Bucket, prefix: prefix, logger: opts.Logger}
}

// Commit uploads every file under paths and deletes the objects of paths that
// no longer exist locally.
func (s *S3) Commit(ctx context.Context, paths []string, message string) error {
	var errs []error
	for _, p := range paths {
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			errs = append(errs, s.delete(ctx, p))
		case err != nil:
			errs = append(errs, err)
		case info.IsDir():
			errs = append(errs, filepath.WalkDir(p, func(file string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".") {
					return err
				}
				return s.upload(ctx, file)
			}))
		default:
			errs = append(errs, s.upload(ctx, p))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("s3 sync done", "bucket", s.bucket, "paths", len(paths), "message", message)
	return nil
}

func (s *S3) key(file string) (string, error) {
	rel, err := filepath.Rel(s.root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside %s", file, s.root)
	}
	return s.prefix + path.Clean(filepath.ToSlash(rel)), nil
}

func (s *S3) upload(ctx context.Context, file string) error {
	key, err := s.key(file)
	if err != nil {
		return err
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := contentType(file); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *S3) delete(ctx context.Context, file string) error {
	key, err := s.key(file)
	if err != nil {
		return err
	}
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return mime.TypeByExtension(filepath.Ext(file))
	}
}
