package console

import (
	"errors"
	"fmt"

	"trading-console/internal/session"
	"trading-console/internal/venue"
)

// ErrUnrecognized is returned for verbs the interpreter does not know.
var ErrUnrecognized = errors.New("unrecognized command")

// ErrNeedCredentials rejects account commands locally before any network
// call when no API key/secret is configured.
var ErrNeedCredentials = errors.New("API credentials not configured; set VENUE_API_KEY and VENUE_API_SECRET")

// ArgError is a malformed required argument. The command is aborted with no
// side effect.
type ArgError struct {
	Msg string
}

func (e *ArgError) Error() string {
	return e.Msg
}

func argErrorf(format string, args ...any) error {
	return &ArgError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies a command failure for loop reporting.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindArgument
	KindSession
	KindCredentials
	KindUnrecognized
	KindRemote
)

// Classify maps any error produced by command dispatch onto its kind.
// Anything not recognized is treated as a remote/transport failure.
func Classify(err error) ErrorKind {
	var argErr *ArgError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnrecognized):
		return KindUnrecognized
	case errors.Is(err, ErrNeedCredentials), errors.Is(err, venue.ErrMissingCredentials):
		return KindCredentials
	case errors.Is(err, session.ErrAlreadyActive):
		return KindSession
	case errors.As(err, &argErr):
		return KindArgument
	default:
		return KindRemote
	}
}
