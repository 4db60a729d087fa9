package apperrors

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
)

var (
	ErrDuplicateEventName   = errors.New("event name already exists")
	ErrDuplicateReview      = errors.New("user already reviewed this event")
	ErrDuplicateParticipant = errors.New("user already responded to this event")
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidMediaType    = errors.New("not an image")
	ErrDecodeImage         = errors.New("cannot decode image")
	ErrMissingCoordinates  = errors.New("missing latitude or longitude")
	ErrCacheMiss           = errors.New("cache miss")
	ErrInternalServerError = errors.New("internal server error")
)
