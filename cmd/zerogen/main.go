// main.go - zerogen builds the confidential genesis state of a chain.
//
// Commands:
//
//	zerogen genesis  assemble encrypted balances and write the chain spec
//	zerogen address  print the payment address derived for account names
//	zerogen decrypt  decrypt an account's genesis balance from a chain spec
//	zerogen setup    generate (or load) the balance circuit's Groth16 keys
//	zerogen check    run preflight checks and report them as JSON
//
// Settings come from an optional JSON config file; flags override it.

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg     *Config
	log     *Logger
	metrics *MetricsCollector
}

func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{metrics: NewMetricsCollector()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	a.close(err)
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "zerogen",
		Short:             "Generate confidential genesis state",
		SilenceUsage:      true,
		PersistentPreRunE: a.prepare,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "JSON config file, created with defaults if missing")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "append logs to this file")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		a.genesisCmd(),
		a.addressCmd(),
		a.decryptCmd(),
		a.setupCmd(),
		a.checkCmd(),
	)
	return root
}

func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}
	auditPath := ""
	if cfg.EnableAudit {
		auditPath = cfg.AuditLogPath
	}
	log, err := NewLogger(cfg.LogLevel, cmd.ErrOrStderr(), cfg.LogFile, auditPath)
	if err != nil {
		return err
	}
	log.RouteGnark()
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) close(err error) {
	if a.log == nil {
		return
	}
	if err != nil {
		a.log.Error().Err(err).Msg("command failed")
	}
	a.log.Debug().Interface("metrics", a.metrics.GetMetricsSummary()).Msg("metrics summary")
	a.log.Close()
}
