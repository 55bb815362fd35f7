package errs

import "errors"

var (
	ErrReportNotFound          = errors.New("report not found")
	ErrFeedbackRequestNotFound = errors.New("feedback request not found")
	ErrUserNotFound            = errors.New("user not found")

	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidStatus = errors.New("invalid report status")
	ErrProofRequired = errors.New("staff must upload proof of work before the report can be resolved")
	ErrInvalidAssign = errors.New("assignment requires staff ids or a team id")
	ErrInvalidReport = errors.New("invalid report")

	ErrReportNotResolved = errors.New("feedback can only be requested for a resolved report")

	ErrNoAdmins     = errors.New("no admins found for organization")
	ErrNoPushToken  = errors.New("user has no push token")
	ErrEmptyImage   = errors.New("image uri is required")
	ErrImageFetch   = errors.New("failed to fetch image")
	ErrUploadFailed = errors.New("failed to upload image")

	ErrUnsupportedImageURI = errors.New("image uri must be an http(s) url")
	ErrBucketNotAllowed    = errors.New("bucket is not allowed")
	ErrImageTooLarge       = errors.New("image exceeds the maximum upload size")
)
