package usecase

import "errors"

var (
	// ErrInvalidArgument is returned when an identifier is missing, non-numeric or not positive.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidKind is returned when a thumbnail is requested for media that is not a video.
	ErrInvalidKind = errors.New("media is not a video")

	// ErrThumbnailGenerationFailed is returned when the frame extractor fails, times out or cannot start.
	ErrThumbnailGenerationFailed = errors.New("thumbnail generation failed")

	// ErrStorage is returned for filesystem failures around the upload and thumbnail directories.
	ErrStorage = errors.New("storage error")

	// ErrUnsupportedFileType is returned when uploaded content does not match an allowed type.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidCredentials is returned when a username/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTooManyAttempts is returned when login attempts are throttled.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrUnauthorized is returned when a session token is missing, unknown or expired.
	ErrUnauthorized = errors.New("unauthorized")
)
