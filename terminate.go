package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// TerminationResult is the outcome of freeing a port
type TerminationResult struct {
	Success bool
	Message string
	Port    string
	Killed  []string // pids signalled successfully, in resolution order
}

// Partial reports whether some pids were killed before a later one failed
func (r TerminationResult) Partial() bool {
	return !r.Success && len(r.Killed) > 0
}

// PortKiller frees a port by killing whatever owns it
type PortKiller interface {
	KillPort(ctx context.Context, port string) TerminationResult
}

// pidLookup is one way of asking which pids hold a port
type pidLookup struct {
	name string
	args func(port string) []string
}

// pidLookups are tried in order until one reports pids
var pidLookups = []pidLookup{
	{name: "lsof", args: func(port string) []string { return []string{"-t", "-i:" + port} }},
	{name: "fuser", args: func(port string) []string { return []string{port + "/tcp"} }},
}

// Terminator force-kills the processes that own a port
type Terminator struct {
	runner CommandRunner
	logger *slog.Logger
}

// NewTerminator creates a Terminator. A nil logger discards log output.
func NewTerminator(runner CommandRunner, logger *slog.Logger) *Terminator {
	return &Terminator{runner: runner, logger: orDiscard(logger)}
}

// KillPort sends SIGKILL to every process holding port. It never returns an
// error; every failure is described by the result. Kills run sequentially and
// stop at the first failure. Pids killed before that are kept in Killed.
func (t *Terminator) KillPort(ctx context.Context, port string) TerminationResult {
	port = strings.TrimSpace(port)
	result := TerminationResult{Port: port}

	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > MaxPort {
		result.Message = fmt.Sprintf("Invalid port %q", port)
		return result
	}

	pids := t.resolvePIDs(ctx, port)
	if len(pids) == 0 {
		result.Message = fmt.Sprintf("No process found on port %s", port)
		return result
	}

	for _, pid := range pids {
		t.logger.Info("killing process", "port", port, "pid", pid)
		if _, err := t.runner.Run(ctx, "kill", "-9", pid); err != nil {
			t.logger.Warn("kill failed", "port", port, "pid", pid, KeyError, err)
			result.Message = killFailureMessage(port, result.Killed, err)
			return result
		}
		result.Killed = append(result.Killed, pid)
	}

	result.Success = true
	result.Message = fmt.Sprintf("Port %s freed (PID: %s)", port, strings.Join(result.Killed, ", "))
	return result
}

// resolvePIDs returns the pids holding port from the first lookup that
// reports any
func (t *Terminator) resolvePIDs(ctx context.Context, port string) []string {
	for _, l := range pidLookups {
		out, err := t.runner.Run(ctx, l.name, l.args(port)...)
		pids := parsePIDs(string(out))
		if len(pids) > 0 {
			return pids
		}
		t.logger.Debug("pid lookup found nothing", "command", l.name, "port", port, KeyError, err)
	}
	return nil
}

// parsePIDs extracts unique numeric pids from lsof -t or fuser output.
// fuser may append access-mode letters (e.g. "1234c"); those are dropped.
func parsePIDs(output string) []string {
	var pids []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(output) {
		tok = strings.TrimRightFunc(tok, unicode.IsLetter)
		if _, err := strconv.Atoi(tok); err != nil || seen[tok] {
			continue
		}
		seen[tok] = true
		pids = append(pids, tok)
	}
	return pids
}

func killFailureMessage(port string, killed []string, err error) string {
	var msg string
	if isPermissionError(err) {
		msg = fmt.Sprintf("No permission to kill the process on port %s. Try running with sudo.", port)
	} else {
		msg = fmt.Sprintf("Failed to free port %s: %v", port, err)
	}
	if len(killed) > 0 {
		msg += fmt.Sprintf(" (already killed PID: %s)", strings.Join(killed, ", "))
	}
	return msg
}

func isPermissionError(err error) bool {
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "permission") || strings.Contains(text, "operation not permitted")
}
