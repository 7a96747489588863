package s3

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

// handleS3Error maps GetObject failures to application error codes.
func handleS3Error(ctx context.Context, origin string, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodeSourceReadError,
			fmt.Sprintf("context canceled while reading %s", origin))
	}

	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NoSuchVersion", "NotFound":
			return errors.WrapUserFacing(err, errors.CodeSourceReadError,
				fmt.Sprintf("desired state object %s not found", origin), "Check source.s3.bucket, key and version_id.")
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return errors.WrapUserFacing(err, errors.CodePlatformAuthError,
				fmt.Sprintf("access to %s denied", origin), "Check the AWS credentials and the bucket policy.")
		}
	}

	return errors.Wrap(err, errors.CodeSourceReadError, fmt.Sprintf("failed to download %s", origin))
}
