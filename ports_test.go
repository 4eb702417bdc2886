package main

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

const ssOutput = `Netid State  Recv-Q Send-Q Local Address:Port  Peer Address:Port Process
udp   UNCONN 0      0      127.0.0.53%lo:53     0.0.0.0:*     users:(("systemd-resolve",pid=540,fd=13))
tcp   LISTEN 0      511    0.0.0.0:8080         0.0.0.0:*     users:(("node",pid=2001,fd=20))
tcp   LISTEN 0      128    0.0.0.0:22           0.0.0.0:*     users:(("sshd",pid=901,fd=3))
tcp   LISTEN 0      128    [::]:22              [::]:*        users:(("sshd",pid=901,fd=4))
tcp   LISTEN 0      4096   127.0.0.1:5432       0.0.0.0:*     users:(("postgres",pid=1200,fd=6))

`

const netstatOutput = `Active Internet connections (only servers)
Proto Recv-Q Send-Q Local Address           Foreign Address         State       PID/Program name
tcp        0      0 0.0.0.0:3306            0.0.0.0:*               LISTEN      1500/mysqld
tcp6       0      0 :::80                   :::*                    LISTEN      1600/apache2
udp        0      0 0.0.0.0:68              0.0.0.0:*                           812/dhclient
`

func TestListeningPortsFromSS(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"ss -tulnp": {out: ssOutput},
	})
	lister := NewLister(runner, nil)

	ports, err := lister.ListeningPorts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []PortRecord{
		{Protocol: ProtocolTCP, Port: 22, Address: "0.0.0.0", PID: "901", Process: "sshd"},
		{Protocol: ProtocolUDP, Port: 53, Address: "127.0.0.53%lo", PID: "540", Process: "systemd-resolve"},
		{Protocol: ProtocolTCP, Port: 5432, Address: "127.0.0.1", PID: "1200", Process: "postgres"},
		{Protocol: ProtocolTCP, Port: 8080, Address: "0.0.0.0", PID: "2001", Process: "node"},
	}
	if !reflect.DeepEqual(ports, expected) {
		t.Errorf("ListeningPorts() =\n%+v\nexpected\n%+v", ports, expected)
	}

	if calls := runner.Calls(); len(calls) != 1 {
		t.Errorf("expected only ss to run, got %v", calls)
	}
}

func TestListeningPortsFallsBackToNetstat(t *testing.T) {
	tests := []struct {
		name string
		ss   *fakeResponse
	}{
		{name: "ss missing", ss: nil},
		{name: "ss fails without output", ss: &fakeResponse{err: errors.New("exit status 1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]fakeResponse{
				"netstat -tulnp": {out: netstatOutput},
			}
			if tt.ss != nil {
				responses["ss -tulnp"] = *tt.ss
			}
			runner := newFakeRunner(responses)

			ports, err := NewLister(runner, nil).ListeningPorts(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			expected := []PortRecord{
				{Protocol: ProtocolUDP, Port: 68, Address: "0.0.0.0", PID: "812", Process: "dhclient"},
				{Protocol: ProtocolTCP, Port: 80, Address: "::", PID: "1600", Process: "apache2"},
				{Protocol: ProtocolTCP, Port: 3306, Address: "0.0.0.0", PID: "1500", Process: "mysqld"},
			}
			if !reflect.DeepEqual(ports, expected) {
				t.Errorf("ListeningPorts() =\n%+v\nexpected\n%+v", ports, expected)
			}

			calls := runner.Calls()
			if len(calls) != 2 || calls[0] != "ss -tulnp" || calls[1] != "netstat -tulnp" {
				t.Errorf("unexpected call order: %v", calls)
			}
		})
	}
}

func TestListeningPortsUsesOutputOfNonZeroExit(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"ss -tulnp":      {out: ssOutput, err: errors.New("exit status 1")},
		"netstat -tulnp": {out: netstatOutput},
	})

	ports, err := NewLister(runner, nil).ListeningPorts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ports) != 4 {
		t.Errorf("expected the 4 ss records, got %d", len(ports))
	}
	if calls := runner.Calls(); len(calls) != 1 {
		t.Errorf("outputs must not be merged; netstat should not run, got %v", calls)
	}
}

func TestListeningPortsScanFailure(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"ss -tulnp": {err: errors.New("exit status 1")},
	})

	ports, err := NewLister(runner, nil).ListeningPorts(context.Background())
	if !errors.Is(err, ErrScanFailure) {
		t.Fatalf("expected ErrScanFailure, got %v", err)
	}
	if ports != nil {
		t.Errorf("expected no ports on failure, got %v", ports)
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Error("expected the underlying command error to be reachable")
	}
}

func TestListeningPortsEmptyIsNotAnError(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"ss -tulnp": {out: "Netid State Recv-Q Send-Q Local Address:Port Peer Address:Port Process\n"},
	})

	ports, err := NewLister(runner, nil).ListeningPorts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ports == nil || len(ports) != 0 {
		t.Errorf("expected an empty, non-nil result, got %#v", ports)
	}
}

func TestListeningPortsIdempotent(t *testing.T) {
	runner := newFakeRunner(map[string]fakeResponse{
		"ss -tulnp": {out: ssOutput},
	})
	lister := NewLister(runner, nil)

	first, err := lister.ListeningPorts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := lister.ListeningPorts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between calls:\n%+v\n%+v", first, second)
	}
}

func TestParseListing(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []PortRecord
	}{
		{
			name: "same port via both grammars keeps the first",
			input: `tcp   LISTEN  0  128  0.0.0.0:3000  0.0.0.0:*  users:(("node",pid=1234,fd=21))
tcp  0  0  127.0.0.1:3000  0.0.0.0:*  LISTEN  5678/python`,
			expected: []PortRecord{
				{Protocol: ProtocolTCP, Port: 3000, Address: "0.0.0.0", PID: "1234", Process: "node"},
			},
		},
		{
			name: "same port on different protocols is kept twice",
			input: `udp  0  0  0.0.0.0:53  0.0.0.0:*  540/dnsmasq
tcp  0  0  0.0.0.0:53  0.0.0.0:*  LISTEN  540/dnsmasq`,
			expected: []PortRecord{
				{Protocol: ProtocolUDP, Port: 53, Address: "0.0.0.0", PID: "540", Process: "dnsmasq"},
				{Protocol: ProtocolTCP, Port: 53, Address: "0.0.0.0", PID: "540", Process: "dnsmasq"},
			},
		},
		{
			name: "sorted numerically not lexically",
			input: `tcp  0  0  0.0.0.0:9000  0.0.0.0:*  LISTEN  1/a
tcp  0  0  0.0.0.0:80  0.0.0.0:*  LISTEN  2/b
tcp  0  0  0.0.0.0:443  0.0.0.0:*  LISTEN  3/c`,
			expected: []PortRecord{
				{Protocol: ProtocolTCP, Port: 80, Address: "0.0.0.0", PID: "2", Process: "b"},
				{Protocol: ProtocolTCP, Port: 443, Address: "0.0.0.0", PID: "3", Process: "c"},
				{Protocol: ProtocolTCP, Port: 9000, Address: "0.0.0.0", PID: "1", Process: "a"},
			},
		},
		{
			name: "headers and garbage are dropped",
			input: `Proto Recv-Q Send-Q Local Address Foreign Address State PID/Program name
not a socket line

tcp  0  0  0.0.0.0:25  0.0.0.0:*  LISTEN  -`,
			expected: []PortRecord{
				{Protocol: ProtocolTCP, Port: 25, Address: "0.0.0.0", PID: Unknown, Process: Unknown},
			},
		},
		{
			name:     "empty output",
			input:    "",
			expected: []PortRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseListing(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("parseListing() =\n%+v\nexpected\n%+v", got, tt.expected)
			}
		})
	}
}

func TestParseListingSortedForAnyOrder(t *testing.T) {
	lines := []string{
		`tcp  0  0  0.0.0.0:8080  0.0.0.0:*  LISTEN  1/a`,
		`udp  0  0  0.0.0.0:123  0.0.0.0:*  2/b`,
		`tcp  0  0  0.0.0.0:22  0.0.0.0:*  LISTEN  3/c`,
		`tcp  0  0  0.0.0.0:65535  0.0.0.0:*  LISTEN  4/d`,
		`udp  0  0  0.0.0.0:5353  0.0.0.0:*  5/e`,
	}

	// Every rotation of the input must come out ordered
	for shift := range lines {
		input := ""
		for i := range lines {
			input += lines[(i+shift)%len(lines)] + "\n"
		}
		got := parseListing(input)
		if len(got) != len(lines) {
			t.Fatalf("shift %d: expected %d records, got %d", shift, len(lines), len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Port > got[i].Port {
				t.Errorf("shift %d: ports out of order: %d before %d", shift, got[i-1].Port, got[i].Port)
			}
		}
	}
}

func TestPortRecordPrivileged(t *testing.T) {
	tests := []struct {
		port     int
		expected bool
	}{
		{22, true},
		{1023, true},
		{1024, false},
		{8080, false},
	}

	for _, tt := range tests {
		if got := (PortRecord{Port: tt.port}).Privileged(); got != tt.expected {
			t.Errorf("Privileged() for port %d = %v, expected %v", tt.port, got, tt.expected)
		}
	}
}
