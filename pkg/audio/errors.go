// ABOUTME: Sentinel errors shared by decoders, outputs and the driver
// ABOUTME: Callers match them with errors.Is
package audio

import "errors"

var (
	// ErrFileNotFound is returned when an input path does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat is returned when no decoder accepts a file
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFormat is returned for sample rate / channel / bit depth
	// combinations that cannot be played
	ErrInvalidFormat = errors.New("invalid audio format")
)
