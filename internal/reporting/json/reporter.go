package json

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

const ReporterTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Compact bool `mapstructure:"compact"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

type Option func(*Reporter)

func WithWriter(w io.Writer) Option {
	return func(r *Reporter) { r.writer = w }
}

func NewReporter(cfg Config, logger ports.Logger, opts ...Option) (*Reporter, error) {
	r := &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type jsonReport struct {
	DryRun  bool             `json:"dry_run"`
	Summary jsonSummary      `json:"summary"`
	Results []jsonResultItem `json:"results"`
}

type jsonSummary struct {
	ResourceTypes int `json:"resource_types"`
	Unchanged     int `json:"unchanged"`
	Applied       int `json:"applied"`
	Planned       int `json:"planned"`
	Skipped       int `json:"skipped"`
	Unsupported   int `json:"unsupported"`
	Failed        int `json:"failed"`
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	Deleted       int `json:"deleted"`
}

type jsonCounts struct {
	Create int `json:"create"`
	Update int `json:"update"`
	Delete int `json:"delete"`
}

type jsonResultItem struct {
	Type           domain.ResourceType `json:"type"`
	Status         domain.Status       `json:"status"`
	FailedIn       domain.Phase        `json:"failed_in,omitempty"`
	Planned        jsonCounts          `json:"planned"`
	Applied        jsonCounts          `json:"applied"`
	SkippedDeletes int                 `json:"skipped_deletes,omitempty"`
	DurationMS     int64               `json:"duration_ms"`
	Errors         []jsonError         `json:"errors,omitempty"`
}

type jsonError struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (r *Reporter) Report(ctx context.Context, results []domain.ReconciliationResult) error {
	report := jsonReport{
		Summary: jsonSummary{ResourceTypes: len(results)},
		Results: make([]jsonResultItem, 0, len(results)),
	}

	for _, res := range results {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}

		report.DryRun = report.DryRun || res.DryRun
		switch res.Status {
		case domain.StatusUnchanged:
			report.Summary.Unchanged++
		case domain.StatusApplied:
			report.Summary.Applied++
		case domain.StatusPlanned:
			report.Summary.Planned++
		case domain.StatusSkipped:
			report.Summary.Skipped++
		case domain.StatusUnsupported:
			report.Summary.Unsupported++
		case domain.StatusFailed:
			report.Summary.Failed++
		}
		report.Summary.Created += res.Created
		report.Summary.Updated += res.Updated
		report.Summary.Deleted += res.Deleted

		item := jsonResultItem{
			Type:           res.Type,
			Status:         res.Status,
			FailedIn:       res.FailedIn,
			Planned:        jsonCounts{Create: res.Planned.Create, Update: res.Planned.Update, Delete: res.Planned.Delete},
			Applied:        jsonCounts{Create: res.Created, Update: res.Updated, Delete: res.Deleted},
			SkippedDeletes: res.SkippedDeletes,
			DurationMS:     res.Duration.Milliseconds(),
		}
		for _, err := range res.Errors {
			item.Errors = append(item.Errors, toJSONError(err))
		}

		report.Results = append(report.Results, item)
	}

	encoder := json.NewEncoder(r.writer)
	if !r.config.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(report); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}

func toJSONError(err error) jsonError {
	out := jsonError{Message: err.Error()}
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		out.Code = code.String()
	}
	if apiErr, ok := apperrors.AsAPIError(err); ok {
		out.StatusCode = apiErr.StatusCode
	}
	return out
}
