// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hook

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// Environment holds the variables the unit agent sets for a hook process.
type Environment struct {
	CharmDir     string
	DispatchPath string
	HookName     string
	UnitName     string
	ModelName    string
	RelationName string
	RelationId   string
	RemoteUnit   string
	RemoteApp    string
}

// EnvironmentFromGetenv reads the hook environment using getenv, which is
// usually os.Getenv.
func EnvironmentFromGetenv(getenv func(string) string) Environment {
	return Environment{
		CharmDir:     getenv("CHARM_DIR"),
		DispatchPath: getenv("JUJU_DISPATCH_PATH"),
		HookName:     getenv("JUJU_HOOK_NAME"),
		UnitName:     getenv("JUJU_UNIT_NAME"),
		ModelName:    getenv("JUJU_MODEL_NAME"),
		RelationName: getenv("JUJU_RELATION"),
		RelationId:   getenv("JUJU_RELATION_ID"),
		RemoteUnit:   getenv("JUJU_REMOTE_UNIT"),
		RemoteApp:    getenv("JUJU_REMOTE_APP"),
	}
}

// ApplicationName returns the name of the application the local unit
// belongs to.
func (env Environment) ApplicationName() (string, error) {
	if env.UnitName == "" {
		return "", errors.NotFoundf("JUJU_UNIT_NAME")
	}
	app, err := names.UnitApplication(env.UnitName)
	if err != nil {
		return "", errors.Trace(err)
	}
	return app, nil
}

// ResolveHookName picks the hook being run. An explicit name wins, then the
// dispatch path, then JUJU_HOOK_NAME, then the name the binary was invoked
// as (hooks/<name> symlinks).
func (env Environment) ResolveHookName(explicit, argv0 string) string {
	switch {
	case explicit != "":
		return explicit
	case env.DispatchPath != "":
		return filepath.Base(env.DispatchPath)
	case env.HookName != "":
		return env.HookName
	}
	return filepath.Base(argv0)
}

// Info builds the hook Info for the named hook out of the environment.
func (env Environment) Info(hookName string) (Info, error) {
	kind, relationName, err := ParseName(hookName)
	if err != nil {
		return Info{}, errors.Trace(err)
	}
	info := Info{
		Kind:       kind,
		RelationId: NoRelation,
	}
	if kind.IsRelation() {
		info.RelationName = relationName
		if env.RelationName != "" && env.RelationName != relationName {
			return Info{}, errors.NotValidf("hook %q run for relation %q", hookName, env.RelationName)
		}
		if info.RelationId, err = ParseRelationId(env.RelationId); err != nil {
			return Info{}, errors.Annotate(err, "JUJU_RELATION_ID")
		}
		info.RemoteUnit = env.RemoteUnit
		info.RemoteApplication = env.RemoteApp
		if info.RemoteApplication == "" && info.RemoteUnit != "" {
			if info.RemoteApplication, err = names.UnitApplication(info.RemoteUnit); err != nil {
				return Info{}, errors.Trace(err)
			}
		}
	}
	if err := info.Validate(); err != nil {
		return Info{}, errors.Trace(err)
	}
	return info, nil
}

// ParseRelationId parses relation ids as printed by the hook tools, either
// "<endpoint>:<id>" or a bare integer.
func ParseRelationId(value string) (int, error) {
	trimmed := value
	if idx := strings.LastIndex(trimmed, ":"); idx != -1 {
		trimmed = trimmed[idx+1:]
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id < 0 {
		return NoRelation, errors.NotValidf("relation id %q", value)
	}
	return id, nil
}
