package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessInfo is a snapshot of a running process. It goes stale as soon as
// it is returned; nothing revalidates it.
type ProcessInfo struct {
	PID  string
	User string
	Cmd  string

	// Best effort, zero when unavailable
	RSS     uint64
	Started time.Time
}

// ProcessInspector looks up metadata for a pid
type ProcessInspector interface {
	Inspect(ctx context.Context, pid string) (ProcessInfo, bool)
}

// Inspector reads process metadata with ps
type Inspector struct {
	runner CommandRunner
	logger *slog.Logger

	// enrich fills in the optional ProcessInfo fields; nil skips it
	enrich func(ctx context.Context, info *ProcessInfo)
}

// NewInspector creates an Inspector that enriches results with gopsutil
func NewInspector(runner CommandRunner, logger *slog.Logger) *Inspector {
	return &Inspector{
		runner: runner,
		logger: orDiscard(logger),
		enrich: enrichFromProc,
	}
}

// Inspect returns metadata for pid. It reports false for the Unknown
// sentinel, an empty pid, or any failure to read the process; it never
// returns an error.
func (i *Inspector) Inspect(ctx context.Context, pid string) (ProcessInfo, bool) {
	if pid == "" || pid == Unknown {
		return ProcessInfo{}, false
	}

	out, err := i.runner.Run(ctx, "ps", "-p", pid, "-o", "pid,user,cmd", "--no-headers")
	if err != nil {
		i.logger.Debug("process inspection failed", "pid", pid, KeyError, err)
		return ProcessInfo{}, false
	}

	info, ok := parsePsLine(string(out))
	if !ok {
		return ProcessInfo{}, false
	}
	if i.enrich != nil {
		i.enrich(ctx, &info)
	}
	return info, true
}

// parsePsLine splits "pid user cmd..." into a ProcessInfo
func parsePsLine(output string) (ProcessInfo, bool) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 {
		return ProcessInfo{}, false
	}
	return ProcessInfo{
		PID:  fields[0],
		User: fields[1],
		Cmd:  strings.Join(fields[2:], " "),
	}, true
}

// enrichFromProc adds resident memory and start time via gopsutil
func enrichFromProc(ctx context.Context, info *ProcessInfo) {
	pid, err := strconv.ParseInt(info.PID, 10, 32)
	if err != nil {
		return
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		info.RSS = mem.RSS
	}
	if created, err := p.CreateTimeWithContext(ctx); err == nil && created > 0 {
		info.Started = time.UnixMilli(created)
	}
}
