package app

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/directory"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/hclfile"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/s3"
	"github.com/olusolaa/tenant-reconciler/internal/adapters/source/yamlfile"
	"github.com/olusolaa/tenant-reconciler/internal/config"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

// parseTypesOverride splits a comma separated --types value, dropping
// blanks and repeats.
func parseTypesOverride(override string) []string {
	if strings.TrimSpace(override) == "" {
		return nil
	}
	seen := make(map[string]bool)
	var parsed []string
	for _, t := range strings.Split(override, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		parsed = append(parsed, t)
	}
	return parsed
}

// applyInputOverride points the source configuration at --input. An
// s3://bucket/key URL selects the S3 source, .hcl files the HCL source and
// .yaml/.yml files the YAML source. Other paths keep the configured file
// based source type, or the directory source when none is configured.
func applyInputOverride(src *config.SourceConfig, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if strings.HasPrefix(input, "s3://") {
		return applyS3Input(src, input)
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".hcl":
		src.Type = hclfile.SourceTypeHCL
	case ".yaml", ".yml":
		src.Type = yamlfile.SourceTypeYAML
	default:
		if src.Type == s3.SourceTypeS3 {
			src.Type = directory.SourceTypeDirectory
		}
		if info, err := os.Stat(input); err == nil && info.IsDir() && src.Type == yamlfile.SourceTypeYAML {
			src.Type = directory.SourceTypeDirectory
		}
	}

	switch src.Type {
	case hclfile.SourceTypeHCL:
		src.HCL = &hclfile.Config{Path: input}
	case directory.SourceTypeDirectory:
		src.Directory = &directory.Config{Path: input}
	default:
		src.YAML = &yamlfile.Config{Path: input}
	}
	return nil
}

func applyS3Input(src *config.SourceConfig, input string) error {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" || strings.Trim(u.Path, "/") == "" {
		return errors.NewUserFacing(errors.CodeConfigValidation,
			"invalid S3 input '"+input+"'", "Use the form s3://bucket/path/to/tenant.yaml.")
	}

	next := s3.Config{}
	if src.S3 != nil {
		next = *src.S3
	}
	next.Bucket = u.Host
	next.Key = strings.TrimPrefix(u.Path, "/")
	next.VersionID = u.Query().Get("versionId")

	src.Type = s3.SourceTypeS3
	src.S3 = &next
	return nil
}
