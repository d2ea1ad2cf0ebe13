package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"despesas/internal/model"
	"despesas/internal/repository"
)

// ExpensePostgres is a PostgreSQL implementation of repository.ExpenseRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ExpensePostgres struct {
	db    *sql.DB
	newID func() string
}

// NewExpensePostgres creates a new ExpensePostgres repository.
func NewExpensePostgres(db *sql.DB) *ExpensePostgres {
	return &ExpensePostgres{db: db, newID: uuid.NewString}
}

var _ repository.ExpenseRepository = (*ExpensePostgres)(nil)

const upsertColumns = 10

// UpsertBatch issues a single multi-row INSERT ... ON CONFLICT (document_number).
// The id column is only set on insert.
func (r *ExpensePostgres) UpsertBatch(ctx context.Context, batch []model.Expense) error {
	if len(batch) == 0 {
		return repository.ErrEmptyBatch
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO expenses (id, date, amount, description, category, supplier_name, document_number, year, month, source_url) VALUES `)

	args := make([]any, 0, len(batch)*upsertColumns)
	for i, e := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * upsertColumns
		sb.WriteString("(")
		for c := 1; c <= upsertColumns; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+c)
		}
		sb.WriteString(")")

		args = append(args,
			r.newID(),
			e.Date,
			e.Amount,
			e.Description,
			e.Category,
			e.SupplierName,
			e.DocumentNumber,
			e.Year,
			e.Month,
			e.SourceURL,
		)
	}
	sb.WriteString(`
		ON CONFLICT (document_number) DO UPDATE SET
			date = EXCLUDED.date,
			amount = EXCLUDED.amount,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			supplier_name = EXCLUDED.supplier_name,
			year = EXCLUDED.year,
			month = EXCLUDED.month,
			source_url = EXCLUDED.source_url,
			updated_at = now()`)

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upsert %d expenses: %w", len(batch), err)
	}
	return nil
}

// CountByPeriod counts rows for one (year, month).
func (r *ExpensePostgres) CountByPeriod(ctx context.Context, year, month int) (int, error) {
	const q = `SELECT COUNT(*) FROM expenses WHERE year = $1 AND month = $2`
	var n int
	if err := r.db.QueryRowContext(ctx, q, year, month).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses %04d-%02d: %w", year, month, err)
	}
	return n, nil
}

// CountByCategory counts rows with the given category.
func (r *ExpensePostgres) CountByCategory(ctx context.Context, category string) (int, error) {
	const q = `SELECT COUNT(*) FROM expenses WHERE category = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, category).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses in %q: %w", category, err)
	}
	return n, nil
}

// ListByCategory selects (id, supplier_name, description) for rows with the given category.
func (r *ExpensePostgres) ListByCategory(ctx context.Context, category string) ([]model.CategoryCandidate, error) {
	const q = `
		SELECT id, COALESCE(supplier_name, ''), COALESCE(description, '')
		FROM expenses
		WHERE category = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses in %q: %w", category, err)
	}
	defer rows.Close()

	items := make([]model.CategoryCandidate, 0)
	for rows.Next() {
		var c model.CategoryCandidate
		if err := rows.Scan(&c.ID, &c.SupplierName, &c.Description); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateCategories sets category by id for every update in one statement.
func (r *ExpensePostgres) UpdateCategories(ctx context.Context, updates []model.CategoryUpdate) error {
	if len(updates) == 0 {
		return repository.ErrEmptyBatch
	}

	var sb strings.Builder
	sb.WriteString(`UPDATE expenses AS e SET category = v.category, updated_at = now() FROM (VALUES `)
	args := make([]any, 0, len(updates)*2)
	for i, u := range updates {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d::uuid, $%d)", 2*i+1, 2*i+2)
		args = append(args, u.ID, u.Category)
	}
	sb.WriteString(`) AS v(id, category) WHERE e.id = v.id`)

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("update %d categories: %w", len(updates), err)
	}
	return nil
}

// Ping checks connectivity.
func (r *ExpensePostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
