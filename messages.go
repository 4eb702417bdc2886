package main

import "time"

// TUI messages for the Elm architecture. Replies carry the id of the request
// that produced them so replies to abandoned requests can be dropped.

// scanMsg carries the result of a port listing
type scanMsg struct {
	id    int
	ports []PortRecord
	err   error
}

// inspectMsg carries the process details for the port awaiting confirmation
type inspectMsg struct {
	id    int
	info  ProcessInfo
	found bool
}

// killResultMsg reports the result of freeing a port
type killResultMsg struct {
	id     int
	result TerminationResult
}

// monitorTickMsg fires every refresh interval while monitoring. session ties
// the tick to one monitor visit so ticks from an earlier visit are dropped.
type monitorTickMsg struct {
	at      time.Time
	session int
}
