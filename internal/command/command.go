// Package command runs external programs with errors shaped for this application.
package command

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

const maxOutputLength = 512

// Runner runs an external program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // fixed program names, arguments built internally
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.New(fmt.Errorf("%s failed: %w, output: %s", name, err, truncate(strings.TrimSpace(string(out)), maxOutputLength))).
			Component("command").
			Category(errors.CategoryCommandExecution).
			Context("command", name).
			Build()
	}
	return out, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
