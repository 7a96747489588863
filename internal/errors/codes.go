package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"
	CodeNotImplemented   Code = "NOT_IMPLEMENTED"

	// Desired-state source
	CodeSourceReadError  Code = "SOURCE_READ_ERROR"
	CodeSourceParseError Code = "SOURCE_PARSE_ERROR"

	// Reconciliation
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeMissingIdentity Code = "MISSING_IDENTITY"
	CodeResourceAbsent  Code = "RESOURCE_ABSENT"
	CodeFetchError      Code = "FETCH_ERROR"
	CodeMutationError   Code = "MUTATION_ERROR"
	CodeReconcileFailed Code = "RECONCILE_FAILED"

	// Remote API
	CodePlatformAPIError  Code = "PLATFORM_API_ERROR"
	CodePlatformAuthError Code = "PLATFORM_AUTH_ERROR"
	CodeResourceNotFound  Code = "RESOURCE_NOT_FOUND"
)

func (c Code) String() string {
	return string(c)
}
