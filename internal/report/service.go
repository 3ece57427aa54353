package report

import (
	"log/slog"
	"time"

	"github.com/festflow/festflow/internal/event"
	"github.com/festflow/festflow/internal/expense"
	"github.com/shopspring/decimal"
)

// ExpenseSource is the slice of the expense store the report builder
// reads: settled expenses for one event, in reimbursement order.
type ExpenseSource interface {
	GetReimbursed(eventID int64) ([]*expense.Expense, error)
}

// EventSource resolves the event under report.
type EventSource interface {
	GetByID(id int64) (*event.Event, error)
}

// Service builds financial reports from reimbursed expenses only.
type Service struct {
	expenses ExpenseSource
	events   EventSource
	logger   *slog.Logger
}

func NewService(expenses ExpenseSource, events EventSource, logger *slog.Logger) *Service {
	return &Service{
		expenses: expenses,
		events:   events,
		logger:   logger,
	}
}

// Build assembles the full report for one event: executive summary,
// category breakdown and the reimbursed transaction log.
func (s *Service) Build(eventID int64) (*FinancialReport, error) {
	ev, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	settled, err := s.expenses.GetReimbursed(eventID)
	if err != nil {
		s.logger.Error("failed to load reimbursed expenses", "error", err, "event_id", eventID)
		return nil, err
	}

	totalReimbursed := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	transactions := make([]Transaction, 0, len(settled))

	for _, exp := range settled {
		totalReimbursed = totalReimbursed.Add(exp.Amount)
		byCategory[exp.Category] = byCategory[exp.Category].Add(exp.Amount)

		txn := Transaction{
			User:        exp.SubmitterUsername,
			Description: exp.Description,
			Amount:      exp.Amount,
			Category:    exp.Category,
		}
		if exp.TransactionID != nil {
			txn.TransactionID = *exp.TransactionID
		}
		if exp.ReimbursedAt != nil {
			txn.ReimbursedAt = *exp.ReimbursedAt
		}
		transactions = append(transactions, txn)
	}

	return &FinancialReport{
		EventSummary: EventSummary{
			EventName:           ev.Name,
			GeneratedAt:         time.Now().UTC(),
			TotalBudget:         ev.Budget,
			TotalReimbursed:     totalReimbursed,
			FinalSurplusDeficit: ev.Budget.Sub(totalReimbursed),
		},
		SpendingByCategory: byCategory,
		Transactions:       transactions,
	}, nil
}
