package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/config"
	"excalibur-cli/internal/logging"
)

var (
	cfgFile     string
	pathsFile   string
	jsonOutput  bool
	debug       bool
	logFile     string
	metricsFile string
)

// Request metrics collected by every client built in this process. Written by
// --metrics-file and served by the exporter.
var (
	metricsRegistry = prometheus.NewRegistry()
	requestMetrics  = client.NewMetrics(metricsRegistry)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "excalibur-cli",
	Short: "Provision Excalibur imagery projects, video services and web maps on an ArcGIS portal",
	Long: `Creates imagery projects, livestream video services and GeoJSON feature
layers on an ArcGIS Enterprise portal, and shares them with groups or the
organization.

Endpoints and directories are read from paths.json (see --paths) and can be
overridden per command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Configure(logging.Options{Debug: debug, LogFile: logFile}); err != nil {
			return err
		}
		return config.InitConfig(cfgFile)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if metricsFile != "" {
		if werr := prometheus.WriteToTextfile(metricsFile, metricsRegistry); werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write metrics file: %v\n", werr)
		}
	}
	_ = logging.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.excalibur-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&pathsFile, "paths", config.DefaultPathsFile, "paths file holding portal urls and data directories")

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every portal request")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write request metrics in Prometheus text format on exit")

	conn.register(rootCmd)
}
