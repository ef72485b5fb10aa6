package analysis

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnavailable Kind = "unavailable"
	KindQuota       Kind = "quota"
	KindTimeout     Kind = "timeout"
	KindMalformed   Kind = "malformed"
	KindUpstream    Kind = "upstream"
)

var ErrNoAPIKey = errors.New("gemini api key is not configured")

// Error is the failure value of every Client call.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf classifies any error; context deadlines count as timeouts even
// when they did not come wrapped in an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUpstream
}
