// Package main implements portwatcher, a terminal tool for inspecting
// listening ports and freeing them.
//
// portwatcher provides:
//   - A list of every listening TCP/UDP port with its owning process
//   - Killing the process behind a port, after showing its details
//   - A monitor view that refreshes the list on a fixed interval
//   - Non-interactive list and kill subcommands
//
// All port and process knowledge comes from external tools: ss (falling back
// to netstat) for listings, lsof (falling back to fuser) to find the pids on
// a port, ps for process details and kill -9 to terminate.
//
// # Architecture
//
// The codebase is organized into the following components:
//
//   - parser.go: ss and netstat line grammars (ParseLine)
//   - ports.go: PortRecord and the Lister (PortScanner interface)
//   - inspect.go: ProcessInfo and the Inspector (ProcessInspector interface)
//   - terminate.go: TerminationResult and the Terminator (PortKiller interface)
//   - runner.go: CommandRunner, the single place subprocesses are spawned
//   - model.go, view.go: Bubbletea model for the menu, kill flow and monitor
//   - formatter.go: short command summaries for the process details panel
//   - config.go, logging.go: viper configuration and slog setup
//   - main.go: cobra commands
//
// The PortScanner, ProcessInspector and PortKiller interfaces, together with
// CommandRunner, let tests drive every component without touching the system.
package main
