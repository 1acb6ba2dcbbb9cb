package sweep

import "errors"

var (
	// ErrNameRequired indicates a runner without a name.
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidInterval indicates a non-positive sweep interval.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrFuncRequired indicates a runner without a sweep function.
	ErrFuncRequired = errors.New("sweep function is required")

	// ErrAlreadyStarted indicates Start on a running runner.
	ErrAlreadyStarted = errors.New("runner already started")

	// ErrNotStarted indicates Stop on a stopped runner.
	ErrNotStarted = errors.New("runner not started")
)
