package model

import "github.com/shopspring/decimal"

// RawExpenseRecord is one item of the transparency API payload.
// Field names follow the upstream JSON; values are locale formatted strings.
type RawExpenseRecord struct {
	Organ          string `json:"orgao"`
	Supplier       string `json:"nm_fornecedor"`
	Note           string `json:"desc_empenho"`
	Event          string `json:"evento"`
	Amount         string `json:"vl_despesa"`
	Date           string `json:"dt_emissao_despesa"`
	DocumentNumber string `json:"nr_empenho"`
}

// Expense is the canonical, persisted expenditure record.
// DocumentNumber is the natural key; ID is assigned by the store on first insert.
type Expense struct {
	ID             string          `json:"id,omitempty"`
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	SupplierName   string          `json:"supplier_name"`
	DocumentNumber string          `json:"document_number"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	SourceURL      string          `json:"source_url"`
}

// CategoryCandidate is the projection the recategorizer reads back from the store.
type CategoryCandidate struct {
	ID           string
	SupplierName string
	Description  string
}

// CategoryUpdate is the (id, category) pair written back by the recategorizer.
type CategoryUpdate struct {
	ID       string
	Category string
}
