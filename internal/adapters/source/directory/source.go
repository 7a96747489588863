// Package directory reads the desired state from a directory of JSON files:
// <dir>/<type>.json holds a settings object or an array of items, and
// <dir>/<type>/*.json holds one item per file.
package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

const SourceTypeDirectory = "directory"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Path string `mapstructure:"path" validate:"required"`
}

type Source struct {
	cfg      Config
	keywords *source.Keywords
	logger   ports.Logger
}

func NewSource(cfg Config, keywords *source.Keywords, logger ports.Logger) (*Source, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigValidation,
			fmt.Sprintf("desired state directory %s is not accessible", cfg.Path), "Set source.directory.path or pass --input.")
	}
	if !info.IsDir() {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("%s is not a directory", cfg.Path), "Use the yaml source for single files.")
	}
	return &Source{cfg: cfg, keywords: keywords, logger: logger}, nil
}

func (s *Source) Type() string {
	return SourceTypeDirectory
}

func (s *Source) Load(ctx context.Context, rt domain.ResourceType) ([]domain.DesiredItem, bool, error) {
	file := filepath.Join(s.cfg.Path, string(rt)+".json")
	dir := filepath.Join(s.cfg.Path, string(rt))

	if _, err := os.Stat(file); err == nil {
		raw, err := s.decode(file)
		if err != nil {
			return nil, true, err
		}
		items, err := source.ToItems(raw, file)
		if err != nil {
			return nil, true, errors.Wrap(err, errors.CodeSourceParseError, fmt.Sprintf("invalid %s entries", rt))
		}
		return items, true, nil
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, true, errors.Wrap(err, errors.CodeSourceReadError, fmt.Sprintf("failed to list %s", dir))
	}
	sort.Strings(files)
	s.logger.Debugf(ctx, "Found %d %s file(s) in %s", len(files), rt, dir)

	items := make([]domain.DesiredItem, 0, len(files))
	for _, f := range files {
		raw, err := s.decode(f)
		if err != nil {
			return nil, true, err
		}
		payload, ok := raw.(map[string]any)
		if !ok {
			return nil, true, errors.New(errors.CodeSourceParseError,
				fmt.Sprintf("%s must contain a single JSON object", f))
		}
		items = append(items, domain.DesiredItem{Payload: payload, Origin: f})
	}
	return items, true, nil
}

func (s *Source) decode(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceReadError, fmt.Sprintf("failed to read %s", path))
	}
	if s.keywords != nil {
		if data, err = s.keywords.Apply(data); err != nil {
			return nil, errors.Wrap(err, errors.CodeSourceParseError, fmt.Sprintf("keyword replacement failed for %s", path))
		}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeSourceParseError,
			fmt.Sprintf("failed to parse JSON from %s", path), "Fix the JSON syntax of the desired state.")
	}
	return raw, nil
}
