package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestLoadConfigReadsFileOnce(t *testing.T) {
	dir := t.TempDir()
	yaml := "log-level: debug\nport: \"9999\"\nquestion-bank: mongo\n"
	if err := os.WriteFile(filepath.Join(dir, "interviewprep.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "PORT", "QUESTION_BANK"} {
		t.Setenv(key, "")
	}

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().String("log-level", "info", "")
	cmd.Flags().String("log-format", "text", "")
	addServeFlags(cmd.Flags())

	cfg, v := loadConfig(cmd)
	if cfg.Server.Port != "9999" || cfg.Bank != "mongo" {
		t.Errorf("config = port %q bank %q, want values from the file", cfg.Server.Port, cfg.Bank)
	}
	if v.ConfigFileUsed() == "" {
		t.Error("config file not recorded on the returned viper")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("log level from the config file was not applied")
	}
}
