package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags
var version = "dev"

var (
	cfgFile string
	killYes bool
)

var rootCmd = &cobra.Command{
	Use:     "portwatcher",
	Short:   "Inspect listening ports and kill the processes behind them",
	Long:    `portwatcher lists listening TCP/UDP ports with their owning processes, frees a port by killing its owner, and monitors ports in real time.`,
	Version: version,
	Args:    cobra.NoArgs,
	// Errors are printed by cobra; usage is only useful for flag mistakes
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, runTUI)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the listening ports once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runList(ctx, a, cmd.OutOrStdout())
		})
	},
}

var killCmd = &cobra.Command{
	Use:   "kill <port>",
	Short: "Kill the process listening on a port",
	Long: `Kill the process that is listening on the given port.

Examples:
  portwatcher kill 3000
  portwatcher kill 8080 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runKill(ctx, a, args[0], killYes, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "portwatcher", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/portwatcher/config.yaml)")
	killCmd.Flags().BoolVarP(&killYes, "yes", "y", false, "Skip confirmation prompt")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the configured services shared by every command
type app struct {
	cfg       *Config
	logger    *slog.Logger
	scanner   PortScanner
	inspector ProcessInspector
	killer    PortKiller
}

func newApp(cfg *Config, logger *slog.Logger) *app {
	runner := ExecRunner{Timeout: cfg.CommandTimeout}
	return &app{
		cfg:       cfg,
		logger:    logger,
		scanner:   NewLister(runner, logger.With(KeyComponent, "lister")),
		inspector: NewInspector(runner, logger.With(KeyComponent, "inspector")),
		killer:    NewTerminator(runner, logger.With(KeyComponent, "terminator")),
	}
}

// withApp loads config, sets up logging and runs fn with the wired services
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out, closeLog, err := openLogOutput(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeLog() //nolint:errcheck

	logger := newLogger(cfg.LogFormat, cfg.LogLevel, out)
	logger.Debug("starting", "version", version, "command", cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, newApp(cfg, logger))
}

func runTUI(ctx context.Context, a *app) error {
	svc := Services{Scanner: a.scanner, Inspector: a.inspector, Killer: a.killer}
	p := tea.NewProgram(NewModel(ctx, svc, a.cfg.RefreshInterval, version), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running portwatcher: %w", err)
	}
	return nil
}

func runList(ctx context.Context, a *app, out io.Writer) error {
	ports, err := a.scanner.ListeningPorts(ctx)
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(out, "No listening ports found.")
		return nil
	}
	fmt.Fprintln(out, renderPortTable(ports))
	return nil
}

func runKill(ctx context.Context, a *app, port string, assumeYes bool, in io.Reader, out io.Writer) error {
	if !assumeYes {
		if records, err := a.scanner.ListeningPorts(ctx); err == nil {
			for _, r := range records {
				if r.PortText() != strings.TrimSpace(port) {
					continue
				}
				if info, ok := a.inspector.Inspect(ctx, r.PID); ok {
					fmt.Fprintln(out, renderProcessDetails(info))
				}
				break
			}
		}

		fmt.Fprintf(out, "Kill the process on port %s? [y/N] ", port)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Operation cancelled.")
			return nil
		}
	}

	result := a.killer.KillPort(ctx, port)
	fmt.Fprintln(out, result.Message)
	if !result.Success {
		return fmt.Errorf("could not free port %s", port)
	}
	return nil
}
