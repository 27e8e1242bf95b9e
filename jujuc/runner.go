// Copyright 2021 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujuc

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/utils/v4/exec"
	"github.com/kballard/go-shellquote"
)

// ToolRunner runs a hook tool and returns what it printed on stdout.
type ToolRunner interface {
	RunTool(name string, args ...string) ([]byte, error)

	// RunToolWithInput runs a hook tool with input on its stdin, which
	// keeps secrets off the command line.
	RunToolWithInput(input []byte, name string, args ...string) ([]byte, error)
}

// inputDelimiter ends the here-document holding a tool's stdin.
const inputDelimiter = "LEGENDDB_TOOL_INPUT"

// ToolError is returned when a hook tool exits with a non-zero code.
type ToolError struct {
	Tool   string
	Code   int
	Stderr string
}

// Error is part of the error interface.
func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.Code, msg)
}

// NewToolRunner returns a ToolRunner which runs the hook tools from the
// unit agent's PATH inside workingDir.
func NewToolRunner(workingDir string) ToolRunner {
	return &shellRunner{workingDir: workingDir}
}

type shellRunner struct {
	workingDir string
}

// RunTool is part of the ToolRunner interface.
func (r *shellRunner) RunTool(name string, args ...string) ([]byte, error) {
	return r.run(name, shellquote.Join(append([]string{name}, args...)...))
}

// RunToolWithInput is part of the ToolRunner interface. The commands are
// fed to the shell on its stdin, so the here-document never shows up in
// the process list.
func (r *shellRunner) RunToolWithInput(input []byte, name string, args ...string) ([]byte, error) {
	return r.run(name, toolWithInput(input, name, args...))
}

func toolWithInput(input []byte, name string, args ...string) string {
	command := shellquote.Join(append([]string{name}, args...)...)
	return fmt.Sprintf("%s <<'%s'\n%s\n%s\n",
		command, inputDelimiter, strings.TrimSuffix(string(input), "\n"), inputDelimiter)
}

func (r *shellRunner) run(name, command string) ([]byte, error) {
	result, err := exec.RunCommands(exec.RunParams{
		Commands:   command,
		WorkingDir: r.workingDir,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "running %s", name)
	}
	if result.Code != 0 {
		return nil, &ToolError{
			Tool:   name,
			Code:   result.Code,
			Stderr: string(result.Stderr),
		}
	}
	return result.Stdout, nil
}
