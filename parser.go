package main

import (
	"regexp"
	"strconv"
	"strings"
)

// Unknown marks a pid or process name that the listing did not report
const Unknown = "-"

// Pre-compiled grammars, one per listing tool
var (
	// tcp   LISTEN  0  128  0.0.0.0:3000  0.0.0.0:*  users:(("node",pid=1234,fd=21))
	ssLineRegex = regexp.MustCompile(
		`(?i)^(?P<proto>tcp|udp)\s+\w+\s+\d+\s+\d+\s+(?P<address>\S+):(?P<port>\d+)\s+\S+\s*(?P<extra>.*)$`)
	ssPIDRegex  = regexp.MustCompile(`pid=(\d+)`)
	ssNameRegex = regexp.MustCompile(`\(\("([^"]+)"`)

	// tcp   0  0  127.0.0.1:8080  0.0.0.0:*  LISTEN  5678/python
	// udp   0  0  0.0.0.0:68      0.0.0.0:*          812/dhclient
	netstatLineRegex = regexp.MustCompile(
		`(?i)^(?P<proto>tcp|udp)6?\s+\d+\s+\d+\s+(?P<address>\S+):(?P<port>\d+)\s+\S+(?:\s+(?P<state>[a-z_]+\d*))?(?:\s+(?P<pid>\d+)/(?P<name>[^\s:]+))?`)
)

// headerMarkers identify column header lines in ss and netstat output
var headerMarkers = []string{"State", "Proto", "Netid"}

// ParseLine converts one line of ss or netstat output into a PortRecord.
// The ss grammar is tried first, then netstat. Header lines and lines that
// match neither grammar report false.
func ParseLine(line string) (PortRecord, bool) {
	if isHeaderLine(line) {
		return PortRecord{}, false
	}
	line = strings.TrimSpace(line)
	if rec, ok := parseSSLine(line); ok {
		return rec, true
	}
	return parseNetstatLine(line)
}

func isHeaderLine(line string) bool {
	for _, marker := range headerMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func parseSSLine(line string) (PortRecord, bool) {
	groups, ok := matchGroups(ssLineRegex, line)
	if !ok {
		return PortRecord{}, false
	}

	rec, ok := newPortRecord(groups["proto"], groups["address"], groups["port"])
	if !ok {
		return PortRecord{}, false
	}

	extra := groups["extra"]
	if m := ssPIDRegex.FindStringSubmatch(extra); m != nil {
		rec.PID = m[1]
	}
	if m := ssNameRegex.FindStringSubmatch(extra); m != nil {
		rec.Process = m[1]
	}
	return rec, true
}

func parseNetstatLine(line string) (PortRecord, bool) {
	groups, ok := matchGroups(netstatLineRegex, line)
	if !ok {
		return PortRecord{}, false
	}

	rec, ok := newPortRecord(groups["proto"], groups["address"], groups["port"])
	if !ok {
		return PortRecord{}, false
	}

	if groups["pid"] != "" {
		rec.PID = groups["pid"]
		rec.Process = groups["name"]
	}
	return rec, true
}

// matchGroups returns the named capture groups of re against s
func matchGroups(re *regexp.Regexp, s string) (map[string]string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups, true
}

func newPortRecord(proto, address, portStr string) (PortRecord, bool) {
	if portStr == "" {
		return PortRecord{}, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > MaxPort {
		return PortRecord{}, false
	}

	return PortRecord{
		Protocol: Protocol(strings.ToUpper(proto)),
		Address:  normalizeAddress(address),
		Port:     port,
		PID:      Unknown,
		Process:  Unknown,
	}, true
}

// normalizeAddress folds the wildcard spellings into 0.0.0.0
func normalizeAddress(address string) string {
	if address == "*" || address == "0.0.0.0" {
		return "0.0.0.0"
	}
	return address
}
