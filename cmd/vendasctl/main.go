package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendasctl",
		Short: "Sales dashboard reports from the command line",
		Long: `vendasctl reads sales, expenses and goals from the sales API and writes
the same PDF, spreadsheet and text reports the dashboard offers.

Settings come from flags, VENDAS_* environment variables or a config file.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/vendas/config.yaml)")
	cmd.PersistentFlags().String("api-url", "http://localhost:5001/api", "sales API base URL")
	cmd.PersistentFlags().String("token", "", "bearer token sent to the sales API")
	cmd.PersistentFlags().Duration("timeout", 15*time.Second, "per-request timeout")
	cmd.PersistentFlags().String("timezone", "America/Sao_Paulo", "zone used for calendar dates")
	cmd.PersistentFlags().String("logo", "", "PNG or JPEG drawn on PDF reports")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("api.url", cmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("api.token", cmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("api.timeout", cmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("report.timezone", cmd.PersistentFlags().Lookup("timezone"))
	_ = viper.BindPFlag("report.logo", cmd.PersistentFlags().Lookup("logo"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))

	// Add commands
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(goalCmd())

	return cmd
}

func main() {
	// Set up signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.config/vendas")
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables: api.url -> VENDAS_API_URL
	viper.SetEnvPrefix("VENDAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return setupLogging()
}

func setupLogging() error {
	level, err := zerolog.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}
