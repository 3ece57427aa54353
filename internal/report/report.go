package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialReport is the final accounting of an event: budget versus
// what was actually reimbursed. Only reimbursed expenses count;
// pending and approved amounts are still provisional.
type FinancialReport struct {
	EventSummary       EventSummary               `json:"event_summary"`
	SpendingByCategory map[string]decimal.Decimal `json:"spending_by_category"`
	Transactions       []Transaction              `json:"reimbursed_transactions"`
}

type EventSummary struct {
	EventName           string          `json:"event_name"`
	GeneratedAt         time.Time       `json:"report_generated_on_utc"`
	TotalBudget         decimal.Decimal `json:"total_budget"`
	TotalReimbursed     decimal.Decimal `json:"total_reimbursed"`
	FinalSurplusDeficit decimal.Decimal `json:"final_surplus_deficit"`
}

// Transaction is one settled line in the reimbursed transaction log.
type Transaction struct {
	User          string          `json:"user"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	TransactionID string          `json:"transaction_id"`
	ReimbursedAt  time.Time       `json:"reimbursed_at"`
}
