package seed

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jordanlanch/leadgrid/config"
	"github.com/jordanlanch/leadgrid/pkg/database"
	"github.com/jordanlanch/leadgrid/pkg/testdata"
)

var (
	databaseURL string
	count       int
	batchSize   = testdata.DefaultBatchSize
	seed        int64 = 1
	force       bool
)

// Cmd inserts generated leads
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert generated leads",
	Long:  `Inserts --count generated leads. A table that already has rows is left alone unless --force is set.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if count <= 0 {
			return fmt.Errorf("--count must be positive, got %d", count)
		}

		db, err := database.NewClient(databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if err := db.Migrate(ctx); err != nil {
			return err
		}

		if !force {
			existing, err := testdata.CountLeads(ctx, db)
			if err != nil {
				return err
			}
			if existing > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "leads table has %d rows, skipping (use --force to add more)\n", existing)
				return nil
			}
		}

		bar := progressbar.Default(int64(count), "seeding")
		inserted, err := testdata.SeedLeads(ctx, db, testdata.LeadGeneratorConfig{
			Count:     count,
			BatchSize: batchSize,
			Seed:      seed,
			Progress: func(done int) {
				bar.Set(done)
			},
		})
		bar.Finish()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d leads\n", inserted)
		return nil
	},
}

func init() {
	cfg := config.Load()

	flags := Cmd.Flags()
	flags.StringVar(&databaseURL, "db", cfg.DatabaseURL, "Database URL (defaults to DATABASE_URL)")
	flags.IntVarP(&count, "count", "n", cfg.SeedCount, "Number of leads to insert")
	flags.IntVar(&batchSize, "batch", batchSize, "Rows per INSERT statement")
	flags.Int64Var(&seed, "seed", seed, "Fake data seed")
	flags.BoolVarP(&force, "force", "f", false, "Seed even when the table is not empty")
}
