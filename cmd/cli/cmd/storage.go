package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Cart snapshot storage maintenance",
}

var storagePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cart snapshots from Postgres",
	Long: `Delete expired cart snapshots from the storage_entries table.

The server purges on a timer as well; this is for running the cleanup by
hand or from cron. Requires STORAGE_DRIVER=postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorageDriver != config.StoragePostgres {
			return fmt.Errorf("storage driver is %q, nothing to purge", cfg.StorageDriver)
		}

		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		s := storage.NewGormStorage(db)
		defer s.Close()

		n, err := s.Purge(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired entries\n", n)
		return nil
	},
}

func init() {
	storageCmd.AddCommand(storagePurgeCmd)
}
