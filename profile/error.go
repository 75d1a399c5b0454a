package profile

import "errors"

var (
	// ErrTruncated is returned when a buffer is shorter than the record
	// layout its command code selects.
	ErrTruncated = errors.New("profile record truncated")

	// ErrUnknownCommand is returned for a command code with no known
	// record layout.
	ErrUnknownCommand = errors.New("no record layout for command")

	// ErrStringTooLong is returned when a string override does not fit
	// its fixed slot including the NUL terminator.
	ErrStringTooLong = errors.New("string does not fit field slot")
)
