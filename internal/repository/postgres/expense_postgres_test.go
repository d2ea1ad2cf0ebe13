package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/model"
	"despesas/internal/repository"
)

func newMockRepo(t *testing.T) (*ExpensePostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewExpensePostgres(db)
	n := 0
	repo.newID = func() string {
		n++
		return []string{"id-1", "id-2", "id-3"}[n-1]
	}
	return repo, mock
}

func sampleExpense(doc string) model.Expense {
	return model.Expense{
		Date:           "2026-01-15",
		Amount:         decimal.RequireFromString("1234.56"),
		Description:    "Empenho: COMPRA DE MEDICAMENTOS",
		Category:       "Saúde",
		SupplierName:   "FARMA LTDA",
		DocumentNumber: doc,
		Year:           2026,
		Month:          1,
		SourceURL:      "https://example.org/x/2026/1",
	}
}

func TestExpensePostgres_UpsertBatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	a, b := sampleExpense("DOC-001"), sampleExpense("DOC-002")

	mock.ExpectExec(`INSERT INTO expenses \(id, date, amount, description, category, supplier_name, document_number, year, month, source_url\) VALUES \(\$1, .*\$10\), \(\$11, .*\$20\)\s+ON CONFLICT \(document_number\) DO UPDATE SET`).
		WithArgs(
			"id-1", a.Date, "1234.56", a.Description, a.Category, a.SupplierName, "DOC-001", 2026, 1, a.SourceURL,
			"id-2", b.Date, "1234.56", b.Description, b.Category, b.SupplierName, "DOC-002", 2026, 1, b.SourceURL,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.UpsertBatch(ctx, []model.Expense{a, b})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_UpsertBatch_UpdateLeavesKeyColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DO UPDATE SET date = EXCLUDED.date, amount = EXCLUDED.amount, description = EXCLUDED.description, category = EXCLUDED.category, supplier_name = EXCLUDED.supplier_name, year = EXCLUDED.year, month = EXCLUDED.month, source_url = EXCLUDED.source_url, updated_at = now\(\)$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertBatch(context.Background(), []model.Expense{sampleExpense("DOC-001")}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_UpsertBatch_Errors(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpsertBatch(ctx, nil), repository.ErrEmptyBatch)

	dbErr := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO expenses").WillReturnError(dbErr)

	err := repo.UpsertBatch(ctx, []model.Expense{sampleExpense("DOC-001")})

	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "upsert 1 expenses")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_CountByPeriod(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM expenses WHERE year = \$1 AND month = \$2`).
		WithArgs(2026, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.CountByPeriod(context.Background(), 2026, 1)

	assert.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_CountByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM expenses WHERE category = \$1`).
		WithArgs("Geral").
		WillReturnError(errors.New("boom"))

	_, err := repo.CountByCategory(context.Background(), "Geral")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `count expenses in "Geral"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_ListByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "supplier_name", "description"}).
		AddRow("a", "HOSPITAL SANTA CASA", "Empenho: REPASSE").
		AddRow("b", "PAPELARIA", "Empenho: CANETAS")
	mock.ExpectQuery(`SELECT id, (.+) FROM expenses\s+WHERE category = \$1`).
		WithArgs("Geral").
		WillReturnRows(rows)

	items, err := repo.ListByCategory(context.Background(), "Geral")

	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCandidate{
		{ID: "a", SupplierName: "HOSPITAL SANTA CASA", Description: "Empenho: REPASSE"},
		{ID: "b", SupplierName: "PAPELARIA", Description: "Empenho: CANETAS"},
	}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_UpdateCategories(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdateCategories(ctx, nil), repository.ErrEmptyBatch)

	mock.ExpectExec(`UPDATE expenses AS e SET category = v.category, updated_at = now\(\) FROM \(VALUES \(\$1::uuid, \$2\), \(\$3::uuid, \$4\)\) AS v\(id, category\) WHERE e.id = v.id`).
		WithArgs("a", "Saúde", "c", "Educação").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.UpdateCategories(ctx, []model.CategoryUpdate{
		{ID: "a", Category: "Saúde"},
		{ID: "c", Category: "Educação"},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpensePostgres_Ping(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, repo.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
