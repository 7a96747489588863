// Package s3 reads a YAML desired-state document from an S3 object.
package s3

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/yamlfile"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

const SourceTypeS3 = "s3"

//go:generate mockery --name ObjectGetter --output ./mocks --outpkg mocks --case underscore
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Config struct {
	Bucket    string `mapstructure:"bucket" validate:"required"`
	Key       string `mapstructure:"key" validate:"required"`
	VersionID string `mapstructure:"version_id"`
	Region    string `mapstructure:"region"`
	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type Source struct {
	cfg      Config
	client   ObjectGetter
	keywords *source.Keywords
	logger   ports.Logger

	once sync.Once
	doc  *source.Document
	err  error
}

type Option func(*Source)

// WithClient replaces the S3 client built from the default AWS config.
func WithClient(client ObjectGetter) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

func NewSource(ctx context.Context, cfg Config, keywords *source.Keywords, logger ports.Logger, opts ...Option) (*Source, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "S3 source needs a bucket and a key", "Set source.s3.bucket and source.s3.key.")
	}

	s := &Source{
		cfg:      cfg,
		keywords: keywords,
		logger:   logger.WithFields(map[string]any{"bucket": cfg.Bucket, "key": cfg.Key}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to load default AWS config")
	}
	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return s, nil
}

func (s *Source) Type() string {
	return SourceTypeS3
}

func (s *Source) Load(ctx context.Context, rt domain.ResourceType) ([]domain.DesiredItem, bool, error) {
	s.once.Do(func() {
		s.doc, s.err = s.read(ctx)
	})
	if s.err != nil {
		return nil, false, s.err
	}
	items, declared, err := s.doc.Items(rt)
	if err != nil {
		return nil, true, errors.Wrap(err, errors.CodeSourceParseError, fmt.Sprintf("invalid %s entries", rt))
	}
	return items, declared, nil
}

func (s *Source) origin() string {
	origin := fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, s.cfg.Key)
	if s.cfg.VersionID != "" {
		origin += "?versionId=" + s.cfg.VersionID
	}
	return origin
}

func (s *Source) read(ctx context.Context) (*source.Document, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.cfg.Key),
	}
	if s.cfg.VersionID != "" {
		input.VersionId = aws.String(s.cfg.VersionID)
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		return nil, handleS3Error(ctx, s.origin(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceReadError, fmt.Sprintf("failed to read %s", s.origin()))
	}
	s.logger.Debugf(ctx, "Downloaded desired state %s (%d bytes)", s.origin(), len(data))
	return yamlfile.Parse(data, s.origin(), s.keywords)
}
