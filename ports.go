package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// MaxPort is the highest valid TCP/UDP port number
const MaxPort = 65535

// SystemPortThreshold is the boundary between privileged and user ports
const SystemPortThreshold = 1024

// ErrScanFailure is returned when neither listing command produced output
var ErrScanFailure = errors.New("failed to list ports")

// Protocol is the transport protocol of a listening socket
type Protocol string

const (
	ProtocolTCP Protocol = "TCP"
	ProtocolUDP Protocol = "UDP"
)

// PortRecord represents one listening socket and the process that owns it
type PortRecord struct {
	Protocol Protocol
	Port     int
	Address  string
	PID      string // Unknown when not reported
	Process  string // Unknown when not reported
}

// PortText returns the port formatted for display
func (r PortRecord) PortText() string {
	return strconv.Itoa(r.Port)
}

// Privileged reports whether the port is below SystemPortThreshold
func (r PortRecord) Privileged() bool {
	return r.Port < SystemPortThreshold
}

func (r PortRecord) key() string {
	return string(r.Protocol) + ":" + r.PortText()
}

// PortScanner lists listening ports
type PortScanner interface {
	ListeningPorts(ctx context.Context) ([]PortRecord, error)
}

// listingCommand is one way of asking the OS for its listening sockets
type listingCommand struct {
	name string
	args []string
}

// listingCommands are tried in order until one produces output
var listingCommands = []listingCommand{
	{name: "ss", args: []string{"-tulnp"}},
	{name: "netstat", args: []string{"-tulnp"}},
}

// Lister discovers listening ports by running ss, falling back to netstat
type Lister struct {
	runner CommandRunner
	logger *slog.Logger
}

// NewLister creates a Lister. A nil logger discards log output.
func NewLister(runner CommandRunner, logger *slog.Logger) *Lister {
	return &Lister{runner: runner, logger: orDiscard(logger)}
}

// ListeningPorts returns every listening socket, unique per protocol and
// port, sorted ascending by port. An empty slice means nothing is listening;
// an error wrapping ErrScanFailure means no listing command worked.
func (l *Lister) ListeningPorts(ctx context.Context) ([]PortRecord, error) {
	output, err := l.runListing(ctx)
	if err != nil {
		return nil, err
	}
	return parseListing(output), nil
}

// runListing returns the output of the first listing command that works.
// Outputs are never merged.
func (l *Lister) runListing(ctx context.Context) (string, error) {
	var errs []error
	for _, c := range listingCommands {
		out, err := l.runner.Run(ctx, c.name, c.args...)
		if err == nil || strings.TrimSpace(string(out)) != "" {
			if err != nil {
				l.logger.Debug("listing command exited non-zero with output", "command", c.name, KeyError, err)
			}
			return string(out), nil
		}
		l.logger.Debug("listing command failed, trying next", "command", c.name, KeyError, err)
		errs = append(errs, err)
	}

	err := fmt.Errorf("%w: %w", ErrScanFailure, errors.Join(errs...))
	l.logger.Warn("port scan failed", KeyError, err)
	return "", err
}

// parseListing turns raw listing output into deduplicated, sorted records
func parseListing(output string) []PortRecord {
	records := make([]PortRecord, 0)
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := ParseLine(line)
		if !ok {
			continue
		}
		// The same socket can be reported on several lines (IPv4 and IPv6)
		if seen[rec.key()] {
			continue
		}
		seen[rec.key()] = true
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Port < records[j].Port
	})
	return records
}
