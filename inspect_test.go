package main

import (
	"context"
	"errors"
	"testing"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name      string
		pid       string
		responses map[string]fakeResponse
		expected  ProcessInfo
		found     bool
		runs      int
	}{
		{
			name: "running process",
			pid:  "1234",
			responses: map[string]fakeResponse{
				"ps -p 1234 -o pid,user,cmd --no-headers": {out: " 1234 alice    node   /srv/app/server.js --port 3000\n"},
			},
			expected: ProcessInfo{PID: "1234", User: "alice", Cmd: "node /srv/app/server.js --port 3000"},
			found:    true,
			runs:     1,
		},
		{
			name: "command without arguments",
			pid:  "1",
			responses: map[string]fakeResponse{
				"ps -p 1 -o pid,user,cmd --no-headers": {out: "1 root /sbin/init\n"},
			},
			expected: ProcessInfo{PID: "1", User: "root", Cmd: "/sbin/init"},
			found:    true,
			runs:     1,
		},
		{
			name: "process gone",
			pid:  "4242",
			responses: map[string]fakeResponse{
				"ps -p 4242 -o pid,user,cmd --no-headers": {err: errors.New("exit status 1")},
			},
			runs: 1,
		},
		{
			name: "empty ps output",
			pid:  "99",
			responses: map[string]fakeResponse{
				"ps -p 99 -o pid,user,cmd --no-headers": {out: "\n"},
			},
			runs: 1,
		},
		{name: "unknown sentinel", pid: Unknown, runs: 0},
		{name: "empty pid", pid: "", runs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner(tt.responses)
			inspector := NewInspector(runner, nil)
			inspector.enrich = nil

			info, found := inspector.Inspect(context.Background(), tt.pid)
			if found != tt.found {
				t.Fatalf("Inspect(%q) found = %v, expected %v", tt.pid, found, tt.found)
			}
			if info != tt.expected {
				t.Errorf("Inspect(%q) = %+v, expected %+v", tt.pid, info, tt.expected)
			}
			if calls := runner.Calls(); len(calls) != tt.runs {
				t.Errorf("expected %d command runs, got %v", tt.runs, calls)
			}
		})
	}
}

func TestInspectEnrichesOnlyFoundProcesses(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"ps -p 7 -o pid,user,cmd --no-headers": {out: "7 bob redis-server *:6379\n"},
	})
	inspector := NewInspector(runner, nil)

	var enriched []string
	inspector.enrich = func(_ context.Context, info *ProcessInfo) {
		enriched = append(enriched, info.PID)
		info.RSS = 2048
	}

	info, found := inspector.Inspect(context.Background(), "7")
	if !found {
		t.Fatal("expected process to be found")
	}
	if info.RSS != 2048 {
		t.Errorf("RSS = %d, expected enrichment to set 2048", info.RSS)
	}

	if _, found := inspector.Inspect(context.Background(), "8"); found {
		t.Error("expected pid 8 to be missing")
	}
	if len(enriched) != 1 || enriched[0] != "7" {
		t.Errorf("expected enrichment only for pid 7, got %v", enriched)
	}
}

func TestEnrichFromProcIgnoresBadPID(t *testing.T) {
	info := ProcessInfo{PID: "not-a-pid"}
	enrichFromProc(context.Background(), &info)
	if info.RSS != 0 || !info.Started.IsZero() {
		t.Errorf("expected no enrichment for an invalid pid, got %+v", info)
	}
}
