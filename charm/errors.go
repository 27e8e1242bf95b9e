// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"github.com/juju/errors"

	"github.com/canonical/legend-database-manager/core/status"
)

// statusError reports why credentials could not be derived, along with the
// status the unit should show for it. It matches errors.NotYetAvailable
// when waiting on MongoDB and errors.NotValid when the data is unusable.
type statusError struct {
	status status.StatusInfo
	kind   error
	cause  error
}

func notReady(format string, args ...interface{}) error {
	return &statusError{
		status: status.WaitingStatus(format, args...),
		kind:   errors.NotYetAvailable,
	}
}

func malformed(cause error, format string, args ...interface{}) error {
	return &statusError{
		status: status.BlockedStatus(format, args...),
		kind:   errors.NotValid,
		cause:  cause,
	}
}

// Error is part of the error interface.
func (e *statusError) Error() string {
	if e.cause == nil {
		return e.status.Message
	}
	return e.status.Message + ": " + e.cause.Error()
}

// Is lets errors.Is match the kind of failure.
func (e *statusError) Is(target error) bool {
	return target == e.kind
}

// Unwrap returns the underlying cause, if any.
func (e *statusError) Unwrap() error {
	return e.cause
}

// statusForError returns the status a failure to derive credentials maps
// to. Unexpected errors block the unit.
func statusForError(err error) status.StatusInfo {
	var serr *statusError
	if errors.As(err, &serr) {
		return serr.status
	}
	return status.BlockedStatus("failed to read MongoDB relation data, please review the debug-log for full details")
}
