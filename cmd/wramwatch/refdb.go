package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wramwatch/wramwatch/internal/config"
	"github.com/wramwatch/wramwatch/internal/database"
	"github.com/wramwatch/wramwatch/internal/logging"
	"github.com/wramwatch/wramwatch/internal/lookup"
	"github.com/wramwatch/wramwatch/internal/lookup/sqlstore"
)

var refdbCmd = &cobra.Command{
	Use:   "refdb",
	Short: "Manage the SQL reference data store",
}

var refdbImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the reference files from the data dir into the SQL store",
	Long: "Reads maps.json, pokemon_data.json, moves_data.json, badges.csv and items.csv " +
		"from lookup.dataDir and upserts them into SQLite (lookup.sqlitePath) or Postgres (db.*).",
	Args: cobra.NoArgs,
	RunE: runRefdbImport,
}

var importTarget string

func init() {
	refdbImportCmd.Flags().StringVar(&importTarget, "target", "", "sqlite or postgres (default: lookup.source, sqlite when that is files)")
	refdbCmd.AddCommand(refdbImportCmd)
}

func runRefdbImport(cmd *cobra.Command, _ []string) error {
	const functionName = "refdb import"

	lm := logging.NewSlogManager()
	lm.Setup(nil, viper.GetString("logLevel"), nil)
	log := lm.Logger()

	cfg := config.GetLookupConfig()
	switch {
	case importTarget != "":
		cfg.Source = importTarget
	case cfg.Source != "postgres":
		cfg.Source = "sqlite"
	}
	if cfg.Source != "sqlite" && cfg.Source != "postgres" {
		return fmt.Errorf("unknown import target %q", cfg.Source)
	}

	db, err := openReferenceDB(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store, err := sqlstore.New(db, log)
	if err != nil {
		return err
	}

	static := lookup.LoadDir(cfg.DataDir, log)
	n, err := store.Import(cmd.Context(), static)
	if err != nil {
		lm.WriteLog(functionName, fmt.Sprintf("Import into %s failed: %v", cfg.Source, err), "ERROR")
		return err
	}
	lm.WriteLog(functionName, fmt.Sprintf("Imported %d reference rows into %s", n, cfg.Source), "INFO")

	for _, t := range lookup.Tables {
		count, err := store.Count(cmd.Context(), t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", t, count)
	}
	return nil
}
