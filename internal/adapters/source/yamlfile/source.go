// Package yamlfile reads the desired state from one YAML document with a
// top-level key per resource type.
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

const SourceTypeYAML = "yaml"

type Config struct {
	Path string `mapstructure:"path" validate:"required"`
}

type Source struct {
	cfg      Config
	keywords *source.Keywords
	logger   ports.Logger

	once sync.Once
	doc  *source.Document
	err  error
}

func NewSource(cfg Config, keywords *source.Keywords, logger ports.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "YAML source path cannot be empty", "Set source.yaml.path or pass --input.")
	}
	return &Source{cfg: cfg, keywords: keywords, logger: logger}, nil
}

func (s *Source) Type() string {
	return SourceTypeYAML
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

func (s *Source) read(ctx context.Context) (*source.Document, error) {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeSourceReadError,
			fmt.Sprintf("failed to read desired state file %s", s.cfg.Path), "Check that the input file exists and is readable.")
	}
	s.logger.Debugf(ctx, "Read desired state file %s (%d bytes)", s.cfg.Path, len(data))
	return Parse(data, s.cfg.Path, s.keywords)
}

// Parse decodes a YAML desired-state document after keyword substitution.
func Parse(data []byte, origin string, keywords *source.Keywords) (*source.Document, error) {
	if keywords != nil {
		replaced, err := keywords.Apply(data)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSourceParseError, fmt.Sprintf("keyword replacement failed for %s", origin))
		}
		data = replaced
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeSourceParseError,
			fmt.Sprintf("failed to parse YAML from %s", origin), "Fix the YAML syntax of the desired state.")
	}
	doc, err := source.NewDocument(origin, decoded)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceParseError, "invalid desired state document")
	}
	return doc, nil
}
