package httpapi

import (
	"context"
	stderrs "errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

// errorBody is the error document returned by the management API.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	ErrorCode  string `json:"errorCode"`
}

func decodeAPIError(status int, method, path string, data []byte) error {
	apiErr := &errors.APIError{StatusCode: status, Method: method, Path: path}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.ErrorCode = body.ErrorCode
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	} else if len(data) > 0 && len(data) < 512 {
		apiErr.Message = string(data)
	}
	return apiErr
}

func handleTransportError(ctx context.Context, method, path string, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodePlatformAPIError,
			fmt.Sprintf("context canceled during %s %s", method, path))
	}

	var retrieveErr *oauth2.RetrieveError
	if stderrs.As(err, &retrieveErr) {
		return errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			"failed to obtain an API access token", "Check api.client_id, api.client_secret and api.token_url.")
	}

	return errors.Wrap(err, errors.CodePlatformAPIError, fmt.Sprintf("%s %s failed", method, path))
}
