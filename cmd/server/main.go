package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/interview-prep/backend/internal/config"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "interviewprep",
		Short: "Interview preparation API server",
		RunE:  runServe,
	}
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")
	addServeFlags(rootCmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	addServeFlags(serveCmd.Flags())

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions into the question bank",
		Long: `Load questions into the configured question bank.

Without --file the built-in sample set is used. Files may be JSON (an array
of questions) or XLSX (first sheet, one question per row).`,
		RunE: runSeed,
	}
	seedCmd.Flags().String("file", "", "JSON or XLSX file to import")
	seedCmd.Flags().String("template", "", "write the sample set as an XLSX template to this path and exit")
	seedCmd.Flags().String("question-bank", "", "question bank backend: postgres or mongo")

	countsCmd := &cobra.Command{
		Use:   "counts",
		Short: "Print the number of questions per category",
		RunE:  runCounts,
	}
	countsCmd.Flags().String("question-bank", "", "question bank backend: postgres or mongo")

	adminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user or promote an existing one",
		RunE:  runCreateAdmin,
	}
	adminCmd.Flags().String("email", "", "admin email (required)")
	adminCmd.Flags().String("name", "Admin", "display name")
	adminCmd.Flags().String("password", "", "password, at least 8 characters (required)")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, countsCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance. Keys are looked up in the environment as upper-case with
// underscores, so "jwt-secret" reads JWT_SECRET.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("interviewprep")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/interviewprep")
	v.AddConfigPath("/etc/interviewprep")
	return v
}

// loadConfig reads the configuration for cmd once and sets up logging from
// it. Only serve validates the whole of it; the maintenance commands need a
// database and nothing else.
func loadConfig(cmd *cobra.Command) (*config.Config, *viper.Viper) {
	v := viperForCmd(cmd)
	readErr := v.ReadInConfig()
	setupLogging(v)

	if readErr == nil {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	} else if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
		slog.Warn("error reading config file", "error", readErr)
	}
	return config.Load(v), v
}
