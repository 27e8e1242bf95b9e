// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

import (
	"fmt"

	"github.com/juju/errors"
)

// Status is the workload status a charm reports for its unit through
// status-set.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// StatusInfo holds a Status and associated information.
type StatusInfo struct {
	Status  Status
	Message string
}

// String returns the status and message as juju status would show them.
func (i StatusInfo) String() string {
	if i.Message == "" {
		return i.Status.String()
	}
	return fmt.Sprintf("%s: %s", i.Status, i.Message)
}

// IsZero reports whether no status has been recorded.
func (i StatusInfo) IsZero() bool {
	return i.Status == Empty && i.Message == ""
}

// Validate returns an error if the status cannot be set by a charm.
func (i StatusInfo) Validate() error {
	if !ValidWorkloadStatus(i.Status) {
		return errors.NotValidf("workload status %q", i.Status)
	}
	return nil
}

const (
	// Empty is the zero status, before anything was set.
	Empty Status = ""

	// Maintenance is set when:
	// The unit is not yet providing services, but is actively doing stuff
	// in preparation for providing those services.
	// This is a "spinning" state, not an error state.
	// It reflects activity on the unit itself, not on peers or related units.
	Maintenance Status = "maintenance"

	// Unknown is set when:
	// A unit-agent has finished calling install, config-changed, and start,
	// but the charm has not called status-set yet.
	Unknown Status = "unknown"

	// Waiting is set when:
	// The unit is unable to progress to an active state because an application to
	// which it is related is not running.
	Waiting Status = "waiting"

	// Blocked is set when:
	// The unit needs manual intervention to get back to the Running state.
	Blocked Status = "blocked"

	// Active is set when:
	// The unit believes it is correctly offering all the services it has
	// been asked to offer.
	Active Status = "active"
)

// BlockedStatus returns a blocked StatusInfo with the given message.
func BlockedStatus(format string, args ...interface{}) StatusInfo {
	return StatusInfo{Status: Blocked, Message: fmt.Sprintf(format, args...)}
}

// WaitingStatus returns a waiting StatusInfo with the given message.
func WaitingStatus(format string, args ...interface{}) StatusInfo {
	return StatusInfo{Status: Waiting, Message: fmt.Sprintf(format, args...)}
}

// ActiveStatus returns an active StatusInfo with no message.
func ActiveStatus() StatusInfo {
	return StatusInfo{Status: Active}
}

// ValidWorkloadStatus returns true if status has a valid value (that is to say,
// a value that it's OK to set) for units or applications.
func ValidWorkloadStatus(status Status) bool {
	switch status {
	case
		Blocked,
		Maintenance,
		Waiting,
		Active:
		return true
	default:
		return false
	}
}
