package fetch

import (
	"net/http"
	"slices"

	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

// AbsencePolicy decides which read failures mean "this resource kind does
// not exist for the tenant" rather than a real failure. It is data so that
// operators can extend the feature-disabled codes without silently
// swallowing genuine authorization failures.
type AbsencePolicy struct {
	NotFoundStatuses      []int    `mapstructure:"not_found_statuses"`
	FeatureDisabledStatus int      `mapstructure:"feature_disabled_status"`
	FeatureDisabledCodes  []string `mapstructure:"feature_disabled_codes"`
}

func DefaultAbsencePolicy() AbsencePolicy {
	return AbsencePolicy{
		NotFoundStatuses:      []int{http.StatusNotFound},
		FeatureDisabledStatus: http.StatusForbidden,
		FeatureDisabledCodes:  []string{"feature_not_enabled", "operation_not_supported"},
	}
}

// IsAbsent reports whether err is an API error the policy classifies as absence.
func (p AbsencePolicy) IsAbsent(err error) bool {
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		return false
	}
	if p.IsNotFound(err) {
		return true
	}
	if apiErr.StatusCode != p.FeatureDisabledStatus || apiErr.ErrorCode == "" {
		return false
	}
	return slices.Contains(p.FeatureDisabledCodes, apiErr.ErrorCode)
}

// IsNotFound reports whether err carries one of the not-found statuses.
func (p AbsencePolicy) IsNotFound(err error) bool {
	apiErr, ok := apperrors.AsAPIError(err)
	return ok && slices.Contains(p.NotFoundStatuses, apiErr.StatusCode)
}
