package rules

import "errors"

// Purchase flow failures shared by the initiator, the feedback reporter and the
// HTTP layer.
var (
	ErrAlreadyProcessing = errors.New("purchase already in progress")
	ErrUnavailable       = errors.New("product is not available for purchase")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too many purchase attempts"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}
