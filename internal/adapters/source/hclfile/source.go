// Package hclfile reads the desired state from HCL files made of
// resource "<type>" { ... } blocks. Attribute expressions may reference
// var.<KEYWORD>, local.<name> and a set of standard functions.
package hclfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source"
	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

const SourceTypeHCL = "hcl"

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "resource", LabelNames: []string{"type"}},
		{Type: "locals"},
	},
}

// DiagnosticsError carries HCL diagnostics.
type DiagnosticsError struct {
	Operation string
	Path      string
	Diags     hcl.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("HCL %s error processing %q: %s", e.Operation, e.Path, e.Diags.Error())
}

type Config struct {
	// Path is a .hcl file or a directory of them.
	Path string `mapstructure:"path" validate:"required"`
}

type Source struct {
	cfg      Config
	keywords *source.Keywords
	logger   ports.Logger

	once   sync.Once
	blocks map[domain.ResourceType][]domain.DesiredItem
	err    error
}

func NewSource(cfg Config, keywords *source.Keywords, logger ports.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "HCL source path cannot be empty", "Set source.hcl.path or pass --input.")
	}
	if keywords == nil {
		keywords = source.NewKeywords(nil)
	}
	return &Source{cfg: cfg, keywords: keywords, logger: logger.WithFields(map[string]any{"hcl_path": cfg.Path})}, nil
}

func (s *Source) Type() string {
	return SourceTypeHCL
}

func (s *Source) Load(ctx context.Context, rt domain.ResourceType) ([]domain.DesiredItem, bool, error) {
	s.once.Do(func() {
		s.blocks, s.err = s.evaluate(ctx)
	})
	if s.err != nil {
		return nil, false, s.err
	}
	items, declared := s.blocks[rt]
	return items, declared, nil
}

func (s *Source) files() ([]string, error) {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeSourceReadError,
			fmt.Sprintf("failed to access HCL source %s", s.cfg.Path), "Check that the input path exists.")
	}
	if !info.IsDir() {
		return []string{s.cfg.Path}, nil
	}
	entries, err := os.ReadDir(s.cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceReadError, fmt.Sprintf("failed to read HCL directory: %s", s.cfg.Path))
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".hcl") {
			paths = append(paths, filepath.Join(s.cfg.Path, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.CodeSourceParseError, fmt.Sprintf("no HCL files (.hcl) found in directory: %s", s.cfg.Path))
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Source) evaluate(ctx context.Context) (map[domain.ResourceType][]domain.DesiredItem, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	vars, err := toCty(s.keywords.Mappings())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceParseError, "keyword mappings cannot be used as HCL variables")
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": vars, "local": cty.EmptyObjectVal},
		Functions: functions(),
	}

	parser := hclparse.NewParser()
	var resources []*hcl.Block
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, errors.Wrap(&DiagnosticsError{Operation: "parse", Path: path, Diags: diags},
				errors.CodeSourceParseError, "failed to parse HCL desired state")
		}
		content, diags := file.Body.Content(rootSchema)
		if diags.HasErrors() {
			return nil, errors.Wrap(&DiagnosticsError{Operation: "decode", Path: path, Diags: diags},
				errors.CodeSourceParseError, "unexpected content in HCL desired state")
		}
		for _, block := range content.Blocks {
			switch block.Type {
			case "locals":
				if err := addLocals(evalCtx, block, path); err != nil {
					return nil, err
				}
			case "resource":
				resources = append(resources, block)
			}
		}
		s.logger.Debugf(ctx, "Parsed HCL file %s", path)
	}

	out := make(map[domain.ResourceType][]domain.DesiredItem)
	for _, block := range resources {
		rt := domain.ResourceType(block.Labels[0])
		payload, err := evalBody(evalCtx, block.Body, block.DefRange.String())
		if err != nil {
			return nil, err
		}
		out[rt] = append(out[rt], domain.DesiredItem{Payload: payload, Origin: block.DefRange.String()})
	}
	s.logger.Debugf(ctx, "Evaluated %d resource block(s)", len(resources))
	return out, nil
}

// addLocals evaluates a locals block against what is known so far, so
// locals may reference locals from earlier blocks.
func addLocals(evalCtx *hcl.EvalContext, block *hcl.Block, path string) error {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return errors.Wrap(&DiagnosticsError{Operation: "decode locals", Path: path, Diags: diags},
			errors.CodeSourceParseError, "invalid locals block")
	}
	locals := evalCtx.Variables["local"].AsValueMap()
	if locals == nil {
		locals = make(map[string]cty.Value)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return errors.Wrap(&DiagnosticsError{Operation: "evaluate local." + name, Path: path, Diags: diags},
				errors.CodeSourceParseError, "failed to evaluate local value")
		}
		locals[name] = val
	}
	evalCtx.Variables["local"] = cty.ObjectVal(locals)
	return nil
}

func evalBody(evalCtx *hcl.EvalContext, body hcl.Body, origin string) (domain.Payload, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Wrap(&DiagnosticsError{Operation: "decode", Path: origin, Diags: diags},
			errors.CodeSourceParseError, "resource blocks may only contain attributes")
	}
	payload := make(domain.Payload, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, errors.Wrap(&DiagnosticsError{Operation: "evaluate " + name, Path: origin, Diags: diags},
				errors.CodeSourceParseError, "failed to evaluate attribute")
		}
		goVal, err := fromCty(val)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSourceParseError, fmt.Sprintf("%s: attribute %s", origin, name))
		}
		payload[name] = goVal
	}
	return payload, nil
}
