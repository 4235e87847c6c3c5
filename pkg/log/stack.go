package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.ErrorStackMarshaler = MarshalStack
}

// MarshalStack extracts the stack trace recorded by cockroachdb/errors so that
// zerolog can attach it under the "stack" field. It returns nil when err
// carries no stack.
func MarshalStack(err error) interface{} {
	if st := extractStacktrace(err); st != "" {
		return st
	}
	return nil
}

func extractStacktrace(err error) string {
	for ; err != nil; err = errors.UnwrapOnce(err) {
		safeDetails := errors.GetSafeDetails(err).SafeDetails
		if len(safeDetails) > 0 && safeDetails[0] != "" {
			return safeDetails[0]
		}
	}
	return ""
}
