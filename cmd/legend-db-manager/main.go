// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"
	"runtime"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"github.com/canonical/legend-database-manager/charm"
	"github.com/canonical/legend-database-manager/hook"
	"github.com/canonical/legend-database-manager/jujuc"
	"github.com/canonical/legend-database-manager/mongodb"
)

var logger = loggo.GetLogger("legenddb.cmd")

const (
	// exit_err is the value that is returned when the hook could not be run.
	exit_err = 2
	// exit_panic is the value that is returned when we exit due to an unhandled panic.
	exit_panic = 3
)

var (
	getenv        = os.Getenv
	newToolRunner = jujuc.NewToolRunner
)

const dispatchDoc = `
legend-db-manager runs a single hook of the legend database manager charm.
The hook is taken from --hook, JUJU_DISPATCH_PATH, JUJU_HOOK_NAME or the name
the binary was invoked as, in that order.
`

// dispatchCommand runs the charm for one hook.
type dispatchCommand struct {
	cmd.CommandBase
	argv0    string
	hookName string
}

// Info is part of the cmd.Command interface.
func (c *dispatchCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "legend-db-manager",
		Args:    "[--hook <name>]",
		Purpose: "run a legend database manager hook",
		Doc:     dispatchDoc,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *dispatchCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.hookName, "hook", "", "name of the hook to run")
}

// Init is part of the cmd.Command interface.
func (c *dispatchCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// Run is part of the cmd.Command interface.
func (c *dispatchCommand) Run(ctx *cmd.Context) error {
	env := hook.EnvironmentFromGetenv(getenv)
	if env.CharmDir == "" {
		env.CharmDir = ctx.Dir
	}
	tools, err := jujuc.NewToolsContext(newToolRunner(env.CharmDir), env)
	if err != nil {
		return errors.Annotate(err, "creating hook context")
	}
	previous, err := loggo.ReplaceDefaultWriter(jujuc.NewLogWriter(tools, ctx.Stderr))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() { _, _ = loggo.ReplaceDefaultWriter(previous) }()

	// Juju runs every hook the charm ships, including ones it does not
	// handle (storage hooks, workload events of newer agents). Those must
	// not put the unit into an error state.
	hookName := env.ResolveHookName(c.hookName, c.argv0)
	if _, _, err := hook.ParseName(hookName); err != nil {
		logger.Debugf("ignoring hook %q: %v", hookName, err)
		return nil
	}

	state, err := charm.LoadState(tools)
	if err != nil {
		return errors.Trace(err)
	}
	if err := charm.ApplyLogLevel(state.LogLevel); err != nil {
		logger.Warningf("applying log level %q: %v", state.LogLevel, err)
	}

	meta, err := charm.ReadMetadata(env.CharmDir)
	if err != nil {
		return errors.Annotate(err, "reading charm metadata")
	}
	if err := meta.CheckRelations(); err != nil {
		return errors.Trace(err)
	}

	info, err := env.Info(hookName)
	if err != nil {
		return errors.Trace(err)
	}
	mongo := mongodb.NewConsumer(tools, charm.MongoDBRelationName)
	if err := charm.NewLegendDatabaseManager(tools, mongo, state).Dispatch(info); err != nil {
		return errors.Annotatef(err, "running %q hook", info.Name())
	}
	return errors.Annotate(state.Save(tools), "saving charm state")
}

func main() {
	os.Exit(Main(os.Args))
}

// Main is not redundant with main(), because it provides an entry point
// for testing with arbitrary command line arguments.
func Main(args []string) int {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			logger.Criticalf("Unhandled panic: \n%v\n%s", r, buf)
			os.Exit(exit_panic)
		}
	}()

	ctx, err := cmd.DefaultContext()
	if err != nil {
		cmd.WriteError(os.Stderr, err)
		os.Exit(exit_err)
	}
	return cmd.Main(&dispatchCommand{argv0: args[0]}, ctx, args[1:])
}
