package main

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	nodeBinRegex       = regexp.MustCompile(`node_modules/\.bin/([^/\s]+)`)
	dockerProxyRegex   = regexp.MustCompile(`-container-ip\s+(\S+)\s+-container-port\s+(\d+)`)
	scriptExtensionsRe = regexp.MustCompile(`\.(js|mjs|cjs|ts|py|rb|pl|php)$`)
)

// CommandFormatter turns a raw command line into a short, readable summary
// shown above the full command in the process details panel.
type CommandFormatter interface {
	// Name identifies the formatter
	Name() string

	// Format returns the summary and true when it recognises cmd
	Format(fields []string) (string, bool)
}

// commandFormatters are tried in order; the first match wins
var commandFormatters = []CommandFormatter{
	nodeBinFormatter{},
	dockerProxyFormatter{},
	javaJarFormatter{},
	interpreterFormatter{},
}

// summarizeCommand returns a short label for cmd, falling back to the base
// name of the executable.
func summarizeCommand(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	for _, f := range commandFormatters {
		if s, ok := f.Format(fields); ok {
			return s
		}
	}
	return filepath.Base(fields[0])
}

// nodeBinFormatter: node /srv/app/node_modules/.bin/vite -> vite (app)
type nodeBinFormatter struct{}

func (nodeBinFormatter) Name() string { return "node-bin" }

func (nodeBinFormatter) Format(fields []string) (string, bool) {
	cmd := strings.Join(fields, " ")
	m := nodeBinRegex.FindStringSubmatch(cmd)
	if m == nil {
		return "", false
	}
	return withProject(m[1], projectBefore(cmd, "/node_modules/")), true
}

// dockerProxyFormatter: docker-proxy ... -container-ip 172.17.0.2 -container-port 80
type dockerProxyFormatter struct{}

func (dockerProxyFormatter) Name() string { return "docker-proxy" }

func (dockerProxyFormatter) Format(fields []string) (string, bool) {
	if filepath.Base(fields[0]) != "docker-proxy" {
		return "", false
	}
	m := dockerProxyRegex.FindStringSubmatch(strings.Join(fields, " "))
	if m == nil {
		return "docker-proxy", true
	}
	return "docker-proxy -> " + m[1] + ":" + m[2], true
}

// javaJarFormatter: java -Xmx1g -jar /opt/app/server.jar -> java (server.jar)
type javaJarFormatter struct{}

func (javaJarFormatter) Name() string { return "java-jar" }

func (javaJarFormatter) Format(fields []string) (string, bool) {
	if filepath.Base(fields[0]) != "java" {
		return "", false
	}
	for i, f := range fields[:len(fields)-1] {
		if f == "-jar" {
			return "java (" + filepath.Base(fields[i+1]) + ")", true
		}
	}
	return "", false
}

// interpreters run a script or module named in their arguments
var interpreters = map[string]bool{
	"node":    true,
	"deno":    true,
	"bun":     true,
	"python":  true,
	"python3": true,
	"ruby":    true,
	"perl":    true,
	"php":     true,
}

// interpreterFormatter: python3 -m http.server 8000 -> python3 (http.server)
type interpreterFormatter struct{}

func (interpreterFormatter) Name() string { return "interpreter" }

func (interpreterFormatter) Format(fields []string) (string, bool) {
	exe := filepath.Base(fields[0])
	if !interpreters[exe] {
		return "", false
	}
	for i := 1; i < len(fields); i++ {
		arg := fields[i]
		if arg == "-m" && i+1 < len(fields) {
			return exe + " (" + fields[i+1] + ")", true
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		script := scriptExtensionsRe.ReplaceAllString(filepath.Base(arg), "")
		if script == "" || script == exe {
			return exe, true
		}
		return exe + " (" + script + ")", true
	}
	return exe, true
}

// projectBefore returns the directory name immediately before marker in path
func projectBefore(path, marker string) string {
	idx := strings.Index(path, marker)
	if idx <= 0 {
		return ""
	}
	prefix := path[:idx]
	if sp := strings.LastIndexByte(prefix, ' '); sp != -1 {
		prefix = prefix[sp+1:]
	}
	base := filepath.Base(prefix)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

func withProject(name, project string) string {
	if project == "" {
		return name
	}
	return name + " (" + project + ")"
}
