// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"encoding/json"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/canonical/legend-database-manager/jujuc"
	"github.com/canonical/legend-database-manager/legenddb"
)

const (
	credentialsStateKey = "legend-db-credentials"
	logLevelStateKey    = "log-level"

	// DefaultLogLevel is used until the log-level option is set.
	DefaultLogLevel = "DEBUG"
)

// State is what the charm remembers between hooks. It is stored in the
// unit's charm state, with every value kept as a plain string.
type State struct {
	// Credentials are the last credentials successfully derived from the
	// MongoDB relation, if any.
	Credentials *legenddb.DatabaseCredentials

	// LogLevel is the configured root log level.
	LogLevel string

	saved map[string]string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		LogLevel: DefaultLogLevel,
		saved:    make(map[string]string),
	}
}

// LoadState reads the State stored for the unit.
func LoadState(ctx jujuc.ContextCharmState) (*State, error) {
	stored, err := ctx.CharmState()
	if err != nil {
		return nil, errors.Annotate(err, "loading charm state")
	}
	st := NewState()
	for k, v := range stored {
		st.saved[k] = v
	}
	if level, ok := stored[logLevelStateKey]; ok {
		if _, ok := loggo.ParseLevel(level); ok {
			st.LogLevel = level
		} else {
			logger.Warningf("ignoring stored log level %q", level)
		}
	}
	if encoded, ok := stored[credentialsStateKey]; ok && encoded != "" {
		var creds legenddb.DatabaseCredentials
		if err := json.Unmarshal([]byte(encoded), &creds); err != nil {
			logger.Warningf("discarding unreadable stored credentials: %v", err)
		} else if err := legenddb.ValidateCredentials(creds); err != nil {
			logger.Warningf("discarding invalid stored credentials: %v", err)
		} else {
			st.Credentials = &creds
		}
	}
	return st, nil
}

// Save stores the values that changed since the State was loaded.
func (st *State) Save(ctx jujuc.ContextCharmState) error {
	values, err := st.values()
	if err != nil {
		return errors.Trace(err)
	}
	for _, key := range []string{credentialsStateKey, logLevelStateKey} {
		value, set := values[key]
		old, wasSet := st.saved[key]
		switch {
		case set && (!wasSet || old != value):
			if err := ctx.SetCharmStateValue(key, value); err != nil {
				return errors.Annotatef(err, "saving %q", key)
			}
			st.saved[key] = value
		case !set && wasSet:
			if err := ctx.DeleteCharmStateValue(key); err != nil {
				return errors.Annotatef(err, "deleting %q", key)
			}
			delete(st.saved, key)
		}
	}
	return nil
}

func (st *State) values() (map[string]string, error) {
	values := map[string]string{
		logLevelStateKey: st.LogLevel,
	}
	if st.Credentials != nil {
		encoded, err := json.Marshal(st.Credentials)
		if err != nil {
			return nil, errors.Trace(err)
		}
		values[credentialsStateKey] = string(encoded)
	}
	return values, nil
}
