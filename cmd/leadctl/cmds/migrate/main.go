package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jordanlanch/leadgrid/config"
	"github.com/jordanlanch/leadgrid/pkg/database"
)

var databaseURL string

// Cmd creates or upgrades the leads and saved_views tables
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewClient(databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", db.Dialect())
		return nil
	},
}

func init() {
	flags := Cmd.Flags()
	flags.StringVar(&databaseURL, "db", config.Load().DatabaseURL, "Database URL (defaults to DATABASE_URL)")
}
