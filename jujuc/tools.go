// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujuc

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v3"

	"github.com/canonical/legend-database-manager/core/status"
	"github.com/canonical/legend-database-manager/hook"
)

// ToolsContext implements Context by running the hook tools the unit agent
// puts on the PATH of a hook.
type ToolsContext struct {
	runner   ToolRunner
	unitName string
	appName  string
}

var _ Context = (*ToolsContext)(nil)

// NewToolsContext returns a Context for the unit described by env.
func NewToolsContext(runner ToolRunner, env hook.Environment) (*ToolsContext, error) {
	appName, err := env.ApplicationName()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &ToolsContext{
		runner:   runner,
		unitName: env.UnitName,
		appName:  appName,
	}, nil
}

// UnitName is part of the ContextUnit interface.
func (ctx *ToolsContext) UnitName() string {
	return ctx.unitName
}

// ApplicationName is part of the ContextUnit interface.
func (ctx *ToolsContext) ApplicationName() string {
	return ctx.appName
}

// SetUnitStatus is part of the ContextStatus interface.
func (ctx *ToolsContext) SetUnitStatus(info status.StatusInfo) error {
	if err := info.Validate(); err != nil {
		return errors.Trace(err)
	}
	args := []string{info.Status.String()}
	if info.Message != "" {
		args = append(args, info.Message)
	}
	_, err := ctx.runner.RunTool("status-set", args...)
	return errors.Trace(err)
}

// IsLeader is part of the ContextLeadership interface.
func (ctx *ToolsContext) IsLeader() (bool, error) {
	var leader bool
	if err := ctx.runJSON(&leader, "is-leader", "--format=json"); err != nil {
		return false, errors.Annotate(err, "leadership status unknown")
	}
	return leader, nil
}

// RelationIds is part of the ContextRelations interface.
func (ctx *ToolsContext) RelationIds(endpoint string) ([]int, error) {
	var fakeIds []string
	if err := ctx.runJSON(&fakeIds, "relation-ids", "--format=json", endpoint); err != nil {
		return nil, errors.Trace(err)
	}
	ids := make([]int, 0, len(fakeIds))
	for _, fakeId := range fakeIds {
		id, err := hook.ParseRelationId(fakeId)
		if err != nil {
			return nil, errors.Trace(err)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// RemoteApplication is part of the ContextRelations interface.
func (ctx *ToolsContext) RemoteApplication(relationId int) (string, error) {
	var app string
	if err := ctx.runJSON(&app, "relation-list", "-r", strconv.Itoa(relationId), "--app", "--format=json"); err != nil {
		return "", errors.Trace(err)
	}
	return app, nil
}

// ApplicationSettings is part of the ContextRelations interface.
func (ctx *ToolsContext) ApplicationSettings(relationId int, application string) (map[string]string, error) {
	settings := make(map[string]string)
	err := ctx.runJSON(&settings, "relation-get", "-r", strconv.Itoa(relationId), "--app", "--format=json", "-", application)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return settings, nil
}

// SetApplicationSettings is part of the ContextRelations interface.
func (ctx *ToolsContext) SetApplicationSettings(relationId int, settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}
	input, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = ctx.runner.RunToolWithInput(input, "relation-set", "-r", strconv.Itoa(relationId), "--app", "--file", "-")
	return errors.Trace(err)
}

// ConfigGet is part of the ContextConfig interface.
func (ctx *ToolsContext) ConfigGet(key string) (interface{}, error) {
	var value interface{}
	if err := ctx.runJSON(&value, "config-get", "--format=json", key); err != nil {
		return nil, errors.Trace(err)
	}
	return value, nil
}

// CharmState is part of the ContextCharmState interface.
func (ctx *ToolsContext) CharmState() (map[string]string, error) {
	state := make(map[string]string)
	if err := ctx.runJSON(&state, "state-get", "--format=json"); err != nil {
		return nil, errors.Trace(err)
	}
	return state, nil
}

// SetCharmStateValue is part of the ContextCharmState interface.
func (ctx *ToolsContext) SetCharmStateValue(key, value string) error {
	input, err := yaml.Marshal(map[string]string{key: value})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = ctx.runner.RunToolWithInput(input, "state-set", "--file", "-")
	return errors.Trace(err)
}

// DeleteCharmStateValue is part of the ContextCharmState interface.
func (ctx *ToolsContext) DeleteCharmStateValue(key string) error {
	_, err := ctx.runner.RunTool("state-delete", key)
	return errors.Trace(err)
}

// Log is part of the ContextLogger interface.
func (ctx *ToolsContext) Log(level loggo.Level, message string) error {
	_, err := ctx.runner.RunTool("juju-log", "--log-level", level.String(), message)
	return errors.Trace(err)
}

func (ctx *ToolsContext) runJSON(out interface{}, name string, args ...string) error {
	stdout, err := ctx.runner.RunTool(name, args...)
	if err != nil {
		return errors.Trace(err)
	}
	if len(stdout) == 0 {
		return nil
	}
	if err := json.Unmarshal(stdout, out); err != nil {
		return errors.Annotatef(err, "cannot parse %s output", name)
	}
	return nil
}
