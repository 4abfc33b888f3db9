package testdata

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/brianvoe/gofakeit/v6"

	"github.com/jordanlanch/leadgrid/pkg/database"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// DefaultBatchSize keeps multi-row inserts well under driver parameter limits
const DefaultBatchSize = 200

// Countries cycled through by the generator
var Countries = []string{"Ghana", "Kenya", "Nigeria", "Rwanda", "Morocco", "South Africa", "Egypt"}

// Owners cycled through by the generator
var Owners = []string{"Teammate A", "Teammate B", "Teammate C"}

var insertColumns = []string{
	"company_name", "contact_name", "email", "phone", "country", "stage", "source",
	"owner", "annual_revenue", "next_action_date", "notes", "created_at",
}

// LeadGeneratorConfig configures lead generation parameters
type LeadGeneratorConfig struct {
	Count     int
	BatchSize int
	Seed      int64     // Faker seed, 0 means 1; the same seed yields the same leads
	Now       time.Time // Base for created_at and next action dates

	// Progress is called after each batch with the number of leads inserted so far
	Progress func(done int)
}

// GenerateLead builds the i-th (1-based) seeded lead. Everything except
// revenue and notes is derived from i.
func GenerateLead(faker *gofakeit.Faker, i int, now time.Time) models.Lead {
	phone := "+233-55-" + lastDigits(100000+i, 6)
	country := Countries[i%len(Countries)]
	revenue := math.Round(faker.Float64Range(1000, 250000)*100) / 100
	notes := faker.Sentence(8)

	return models.Lead{
		CompanyName:    fmt.Sprintf("Company %d", i),
		ContactName:    fmt.Sprintf("Founder %d", i),
		Email:          fmt.Sprintf("founder%d@example.com", i),
		Phone:          &phone,
		Country:        &country,
		Stage:          models.Stages[i%len(models.Stages)],
		Source:         models.Sources[i%len(models.Sources)],
		Owner:          Owners[i%len(Owners)],
		AnnualRevenue:  &revenue,
		NextActionDate: models.DateOf(now.AddDate(0, 0, i%60)),
		Notes:          &notes,
		CreatedAt:      now.UTC(),
	}
}

// GenerateLeads creates cfg.Count leads without touching the database
func GenerateLeads(cfg LeadGeneratorConfig) []models.Lead {
	cfg = withDefaults(cfg)
	faker := gofakeit.New(cfg.Seed)

	leads := make([]models.Lead, cfg.Count)
	for i := range leads {
		leads[i] = GenerateLead(faker, i+1, cfg.Now)
	}
	return leads
}

// BulkInsertLeads inserts leads in batches inside one transaction and
// returns the number inserted.
func BulkInsertLeads(ctx context.Context, db *database.Client, leads []models.Lead, batchSize int, progress func(done int)) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	inserted := 0
	err := db.WithTx(ctx, func(tx dialect.Tx) error {
		for i := 0; i < len(leads); i += batchSize {
			end := min(i+batchSize, len(leads))

			insert := entsql.Dialect(db.Dialect()).Insert("leads").Columns(insertColumns...)
			for _, lead := range leads[i:end] {
				insert.Values(
					lead.CompanyName, lead.ContactName, lead.Email, *lead.Phone, *lead.Country,
					lead.Stage, lead.Source, lead.Owner, *lead.AnnualRevenue, lead.NextActionDate.Date,
					*lead.Notes, lead.CreatedAt,
				)
			}

			query, args := insert.Query()
			if err := tx.Exec(ctx, query, args, nil); err != nil {
				return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
			}

			inserted = end
			if progress != nil {
				progress(inserted)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// SeedLeads generates and inserts cfg.Count leads
func SeedLeads(ctx context.Context, db *database.Client, cfg LeadGeneratorConfig) (int, error) {
	cfg = withDefaults(cfg)
	return BulkInsertLeads(ctx, db, GenerateLeads(cfg), cfg.BatchSize, cfg.Progress)
}

// SeedIfEmpty seeds only when the leads table has no rows. It returns the
// number of leads inserted.
func SeedIfEmpty(ctx context.Context, db *database.Client, cfg LeadGeneratorConfig) (int, error) {
	n, err := CountLeads(ctx, db)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	return SeedLeads(ctx, db, cfg)
}

// CountLeads returns the number of rows in the leads table
func CountLeads(ctx context.Context, db *database.Client) (int, error) {
	query, args := entsql.Dialect(db.Dialect()).Select().Count().From(entsql.Table("leads")).Query()
	rows := &entsql.Rows{}
	if err := db.Driver.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return n, nil
}

func withDefaults(cfg LeadGeneratorConfig) LeadGeneratorConfig {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	return cfg
}

// lastDigits returns the last n decimal digits of v
func lastDigits(v, n int) string {
	s := strconv.Itoa(v)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
