package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingPart      = errors.New("required file part missing")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrEncoderSpawn     = errors.New("encoder could not be started")
	ErrEncodeTimeout    = errors.New("encoding timed out")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// EncodeError reports an encoder process that terminated unsuccessfully on
// its own, carrying the exit code or fatal signal and a bounded excerpt of
// the process's stderr.
type EncodeError struct {
	ExitCode int
	Signal   string
	Stderr   string
}

func (e *EncodeError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("encoder killed by signal %s", e.Signal)
	}
	return fmt.Sprintf("encoder exited with code %d", e.ExitCode)
}
