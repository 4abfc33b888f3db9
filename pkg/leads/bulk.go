package leads

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/jordanlanch/leadgrid/pkg/domain"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// MaxCopies caps the number of copies made of each source lead
const MaxCopies = 25

// idChunkSize bounds the number of placeholders in a single IN clause
const idChunkSize = 500

var (
	errIDsRequired   = domain.NewValidationError("ids required")
	errUnsupported   = domain.NewValidationError("Unsupported column for bulk edit.")
	errInvalidCopies = domain.NewValidationError("Copies must be a positive integer.")
	errNoSources     = domain.NewNotFoundMessage("No leads found for the provided ids.")
)

// BulkDelete removes every lead in ids and returns how many rows were
// actually deleted.
func (s *Service) BulkDelete(ctx context.Context, ids []int) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, errIDsRequired
	}

	var deleted int64
	err := s.db.WithTx(ctx, func(tx dialect.Tx) error {
		for _, chunk := range chunkIDs(ids) {
			query, args := s.dialect().Delete(tableName).
				Where(entsql.InInts("id", chunk...)).
				Query()
			n, err := exec(ctx, tx, query, args)
			if err != nil {
				return err
			}
			deleted += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete leads: %w", err)
	}

	s.afterBulk(ctx, "delete", ids, deleted)
	return deleted, nil
}

// BulkEdit sets column to the coerced value on every lead in ids. The value
// is validated once before anything is written.
func (s *Service) BulkEdit(ctx context.Context, ids []int, column string, raw any) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, errIDsRequired
	}
	if !IsEditable(column) {
		return 0, errUnsupported
	}
	value, err := CoerceColumnValue(column, raw)
	if err != nil {
		return 0, err
	}

	var updated int64
	err = s.db.WithTx(ctx, func(tx dialect.Tx) error {
		for _, chunk := range chunkIDs(ids) {
			update := s.dialect().Update(tableName)
			if value == nil {
				update.SetNull(column)
			} else {
				update.Set(column, value)
			}
			query, args := update.Where(entsql.InInts("id", chunk...)).Query()
			n, err := exec(ctx, tx, query, args)
			if err != nil {
				return err
			}
			updated += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update leads: %w", err)
	}

	s.afterBulk(ctx, "edit", ids, updated)
	return updated, nil
}

// BulkDuplicate copies each lead in req.IDs req.Copies times. New ids are
// returned in creation order: source leads by id, copies in order within
// each source.
func (s *Service) BulkDuplicate(ctx context.Context, req models.BulkDuplicateRequest) (*models.BulkDuplicateResponse, error) {
	ids := uniqueIDs(req.IDs)
	if len(ids) == 0 {
		return nil, errIDsRequired
	}
	copies, err := ParseCopies(req.Copies)
	if err != nil {
		return nil, err
	}
	prefix := textOption(req.Prefix)
	suffix := textOption(req.Suffix)

	created := []int{}
	err = s.db.WithTx(ctx, func(tx dialect.Tx) error {
		var sources []models.Lead
		for _, chunk := range chunkIDs(ids) {
			sel := s.dialect().Select(leadColumns...).
				From(entsql.Table(tableName)).
				Where(entsql.InInts("id", chunk...))
			rows, err := s.query(ctx, tx, sel)
			if err != nil {
				return err
			}
			sources = append(sources, rows...)
		}
		if len(sources) == 0 {
			return errNoSources
		}
		slices.SortFunc(sources, func(a, b models.Lead) int { return cmp.Compare(a.ID, b.ID) })

		now := s.now().UTC()
		for _, src := range sources {
			for i := 0; i < copies; i++ {
				id, err := s.insert(ctx, tx, s.copyOf(src, FormatDuplicateName(src.CompanyName, prefix, suffix, i, copies), now))
				if err != nil {
					return err
				}
				created = append(created, id)
			}
		}
		return nil
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to duplicate leads: %w", err)
	}

	s.afterBulk(ctx, "duplicate", ids, int64(len(created)))
	return &models.BulkDuplicateResponse{Duplicated: len(created), IDs: created}, nil
}

// copyOf builds the insert for a copy of src named name
func (s *Service) copyOf(src models.Lead, name string, now time.Time) *entsql.InsertBuilder {
	var revenue any
	if src.AnnualRevenue != nil {
		revenue = *src.AnnualRevenue
	}
	var nextAction any
	if src.NextActionDate.Valid {
		nextAction = src.NextActionDate.Date
	}
	return s.dialect().Insert(tableName).
		Columns(
			"company_name", "contact_name", "email", "phone", "country", "stage", "source",
			"owner", "annual_revenue", "next_action_date", "notes", "created_at",
		).
		Values(
			name, src.ContactName, src.Email, optional(src.Phone), optional(src.Country),
			src.Stage, src.Source, src.Owner, revenue, nextAction, optional(src.Notes), now,
		)
}

func (s *Service) afterBulk(ctx context.Context, operation string, ids []int, affected int64) {
	s.invalidateList(ctx)
	s.metrics.RecordBulk(operation, affected)
	s.logger.Info("Bulk operation completed",
		"operation", operation,
		"ids", len(ids),
		"affected", affected,
	)
}

func exec(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) (int64, error) {
	var res entsql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// uniqueIDs drops zero ids and repeats, keeping first-seen order
func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func chunkIDs(ids []int) [][]int {
	var chunks [][]int
	for len(ids) > idChunkSize {
		chunks = append(chunks, ids[:idChunkSize])
		ids = ids[idChunkSize:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// textOption reads an optional prefix or suffix. Non-string values are
// stringified; null is empty.
func textOption(v any) string {
	if v == nil {
		return ""
	}
	return toString(v)
}
