package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/interview-prep/backend/internal/auth"
	"github.com/interview-prep/backend/internal/config"
	"github.com/interview-prep/backend/internal/database"
	"github.com/interview-prep/backend/internal/importer"
	"github.com/interview-prep/backend/internal/practice"
)

// openMigrated connects to Postgres and applies pending migrations.
func openMigrated(cmd *cobra.Command, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Connect(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig(cmd)
	db, err := openMigrated(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, v := loadConfig(cmd)

	if out := v.GetString("template"); out != "" {
		batch, err := importer.Seed()
		if err != nil {
			return err
		}
		if err := importer.WriteXLSX(out, batch.Questions); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d questions to %s\n", len(batch.Questions), out)
		return nil
	}

	var (
		batch *importer.Batch
		err   error
	)
	if path := v.GetString("file"); path != "" {
		batch, err = importer.ParseFile(path)
	} else {
		batch, err = importer.Seed()
	}
	if err != nil {
		return err
	}

	db, err := openMigrated(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	bank, closeBank, err := openBank(cmd.Context(), cfg, practice.NewStore(db))
	if err != nil {
		return err
	}
	defer closeBank()

	res, err := importer.Import(cmd.Context(), bank, batch)
	if err != nil {
		return err
	}
	for _, msg := range res.Errors {
		slog.Warn("row skipped", "reason", msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d, inserted %d, skipped %d\n", res.Processed, res.Inserted, res.Skipped)
	return nil
}

func runCounts(cmd *cobra.Command, _ []string) error {
	cfg, _ := loadConfig(cmd)
	db, err := openMigrated(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	bank, closeBank, err := openBank(cmd.Context(), cfg, practice.NewStore(db))
	if err != nil {
		return err
	}
	defer closeBank()

	counts, err := bank.CountByCategory(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tQUESTIONS")
	total := 0
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Count)
		total += c.Count
	}
	fmt.Fprintf(w, "TOTAL\t%d\n", total)
	return w.Flush()
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, v := loadConfig(cmd)
	db, err := openMigrated(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Tokens are never issued here, so the secret may be unset.
	svc := auth.NewService(auth.NewStore(db), auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	user, err := svc.CreateAdmin(cmd.Context(), v.GetString("name"), v.GetString("email"), v.GetString("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Admin ready: %s <%s> (%s)\n", user.Name, user.Email, user.ID)
	return nil
}
