package cmd

import (
	"context"
	"os"
	"os/signal"

	"flightcast/config"
	"flightcast/logger"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	appLog *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flightcast",
	Short: "flight search with location autocomplete and destination weather",
	Long: `
flightcast searches round trip flights between two places, suggesting airports
and cities as you type, and caches the weather at the destination for the
travel dates.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		appLog = logger.NewWithConfig(os.Stderr, "flightcast", level, cfg.Log.Format)
		log.SetDefault(appLog)
		return nil
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}
