package expense_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/expense"
	"github.com/festflow/festflow/internal/user"
)

func TestExpense(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Module Suite")
}

// Mock repository for testing. UpdateAtomic mirrors the transactional
// contract: the audit entry is recorded only when the mutation
// succeeds.
type mockExpenseRepository struct {
	expenses    map[int64]*expense.Expense
	auditTrail  []*audit.Entry
	createError error
	getError    error
	nextID      int64
}

func newMockExpenseRepository() *mockExpenseRepository {
	return &mockExpenseRepository{
		expenses: make(map[int64]*expense.Expense),
		nextID:   1,
	}
}

func (m *mockExpenseRepository) Create(exp *expense.Expense, entry *audit.Entry) error {
	if m.createError != nil {
		return m.createError
	}
	exp.ID = m.nextID
	m.nextID++
	m.expenses[exp.ID] = exp
	m.auditTrail = append(m.auditTrail, entry)
	return nil
}

func (m *mockExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	exp, exists := m.expenses[id]
	if !exists {
		return nil, expense.ErrNotFound
	}
	return exp, nil
}

func (m *mockExpenseRepository) GetBySubmitter(username string, limit, offset int) ([]*expense.Expense, error) {
	var result []*expense.Expense
	for _, exp := range m.expenses {
		if exp.SubmitterUsername == username {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *mockExpenseRepository) GetByStatuses(statuses []expense.Status, limit, offset int) ([]*expense.Expense, error) {
	var result []*expense.Expense
	for _, exp := range m.expenses {
		for _, s := range statuses {
			if exp.Status == s {
				result = append(result, exp)
				break
			}
		}
	}
	return result, nil
}

func (m *mockExpenseRepository) GetReimbursed(eventID int64) ([]*expense.Expense, error) {
	var result []*expense.Expense
	for _, exp := range m.expenses {
		if exp.EventID == eventID && exp.Status == expense.StatusReimbursed {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *mockExpenseRepository) UpdateAtomic(id int64, mutate func(*expense.Expense) (*audit.Entry, error)) error {
	exp, exists := m.expenses[id]
	if !exists {
		return expense.ErrNotFound
	}
	copied := *exp
	entry, err := mutate(&copied)
	if err != nil {
		return err
	}
	m.expenses[id] = &copied
	m.auditTrail = append(m.auditTrail, entry)
	return nil
}

// Mock directory for payout lookups
type mockDirectory struct {
	users map[string]*user.User
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{users: map[string]*user.User{
		"student1": {ID: 3, Username: "student1", DisplayName: "Siuuu", Role: user.RoleStudent, PayoutID: "Siuuu@okhdfcbank"},
		"student3": {ID: 5, Username: "student3", DisplayName: "Carter", Role: user.RoleStudent},
	}}
}

func (m *mockDirectory) GetByUsername(username string) (*user.User, error) {
	u, exists := m.users[username]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

var _ = Describe("ExpenseService", func() {
	var (
		service  *expense.Service
		mockRepo *mockExpenseRepository
		dir      *mockDirectory

		student  user.User
		teamLead user.User
		tres     user.User
	)

	submitDTO := func() expense.SubmitExpenseDTO {
		return expense.SubmitExpenseDTO{
			EventID:     1,
			Amount:      decimal.NewFromInt(1500),
			Category:    "Food",
			Description: "Team lunch",
			ReceiptURL:  "/uploads/receipt1.jpg",
		}
	}

	BeforeEach(func() {
		mockRepo = newMockExpenseRepository()
		dir = newMockDirectory()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = expense.NewService(mockRepo, dir, logger)

		student = user.User{ID: 3, Username: "student1", DisplayName: "Siuuu", Role: user.RoleStudent}
		teamLead = user.User{ID: 2, Username: "team_lead", DisplayName: "Ronaldo", Role: user.RoleTeamLead}
		tres = user.User{ID: 1, Username: "treasurer", DisplayName: "Sanjai", Role: user.RoleTreasurer}
	})

	Describe("Submit", func() {
		It("creates the expense pending the team lead with two ordered steps", func() {
			exp, err := service.Submit(student, submitDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(exp.Status).To(Equal(expense.StatusPendingTeamLead))
			Expect(exp.Approvals).To(HaveLen(2))
			Expect(exp.Approvals[0].Role).To(Equal(user.RoleTeamLead))
			Expect(exp.Approvals[1].Role).To(Equal(user.RoleTreasurer))
			Expect(exp.Approvals[0].Approved).To(BeFalse())
			Expect(exp.Approvals[1].Approved).To(BeFalse())
		})

		It("records one audit entry", func() {
			_, err := service.Submit(student, submitDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.auditTrail).To(HaveLen(1))
			Expect(mockRepo.auditTrail[0].ActorName).To(Equal("Siuuu"))
			Expect(mockRepo.auditTrail[0].Action).To(ContainSubstring("submitted an expense"))
		})

		It("rejects a missing receipt", func() {
			dto := submitDTO()
			dto.ReceiptURL = ""

			_, err := service.Submit(student, dto)

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.auditTrail).To(BeEmpty())
		})

		It("rejects a non-positive amount", func() {
			dto := submitDTO()
			dto.Amount = decimal.Zero

			_, err := service.Submit(student, dto)

			Expect(err).To(HaveOccurred())
		})

		It("denies submission by the treasurer", func() {
			_, err := service.Submit(tres, submitDTO())

			Expect(err).To(Equal(auth.ErrForbidden))
		})
	})

	Describe("Approve", func() {
		var expID int64

		BeforeEach(func() {
			exp, err := service.Submit(student, submitDTO())
			Expect(err).ToNot(HaveOccurred())
			expID = exp.ID
		})

		It("moves to pending treasurer after the team lead signs", func() {
			Expect(service.Approve(expID, teamLead)).To(Succeed())

			exp, _ := service.GetByID(expID)
			Expect(exp.Status).To(Equal(expense.StatusPendingTreasurer))
			Expect(exp.Approvals[0].Approved).To(BeTrue())
			Expect(*exp.Approvals[0].ApprovedBy).To(Equal("Ronaldo"))
			Expect(exp.Approvals[0].ApprovedAt).ToNot(BeNil())
		})

		It("moves to approved after both signatures in order", func() {
			Expect(service.Approve(expID, teamLead)).To(Succeed())
			Expect(service.Approve(expID, tres)).To(Succeed())

			exp, _ := service.GetByID(expID)
			Expect(exp.Status).To(Equal(expense.StatusApproved))
		})

		It("refuses the treasurer before the team lead", func() {
			err := service.Approve(expID, tres)

			Expect(err).To(Equal(expense.ErrInvalidStatus))

			exp, _ := service.GetByID(expID)
			Expect(exp.Status).To(Equal(expense.StatusPendingTeamLead))
		})

		It("refuses a repeat signature from the same role", func() {
			Expect(service.Approve(expID, teamLead)).To(Succeed())

			err := service.Approve(expID, teamLead)

			Expect(err).To(Equal(expense.ErrStepAlreadyApproved))
		})

		It("writes no audit entry on a failed approval", func() {
			before := len(mockRepo.auditTrail)

			_ = service.Approve(expID, tres)

			Expect(mockRepo.auditTrail).To(HaveLen(before))
		})

		It("denies approval by a student", func() {
			err := service.Approve(expID, student)

			Expect(err).To(Equal(auth.ErrForbidden))
		})

		It("returns not found for an unknown expense", func() {
			err := service.Approve(9999, teamLead)

			Expect(err).To(Equal(expense.ErrNotFound))
		})
	})

	Describe("Reject", func() {
		var expID int64

		BeforeEach(func() {
			exp, err := service.Submit(student, submitDTO())
			Expect(err).ToNot(HaveOccurred())
			expID = exp.ID
		})

		It("terminates the expense and files the reason as a comment", func() {
			Expect(service.Reject(expID, teamLead, "duplicate claim")).To(Succeed())

			exp, _ := service.GetByID(expID)
			Expect(exp.Status).To(Equal(expense.StatusRejected))
			Expect(exp.Comments).To(HaveLen(1))
			Expect(exp.Comments[0].Text).To(Equal("duplicate claim"))
			Expect(exp.Comments[0].AuthorName).To(Equal("Ronaldo"))
		})

		It("works from the treasurer stage too", func() {
			Expect(service.Approve(expID, teamLead)).To(Succeed())

			Expect(service.Reject(expID, tres, "over budget")).To(Succeed())

			exp, _ := service.GetByID(expID)
			Expect(exp.Status).To(Equal(expense.StatusRejected))
		})

		It("requires a reason", func() {
			err := service.Reject(expID, teamLead, "")

			Expect(err).To(Equal(expense.ErrMissingReason))
		})

		It("refuses to reject an already rejected expense", func() {
			Expect(service.Reject(expID, teamLead, "duplicate claim")).To(Succeed())

			err := service.Reject(expID, teamLead, "again")

			Expect(err).To(Equal(expense.ErrInvalidStatus))
		})
	})

	Describe("Reimburse", func() {
		var expID int64

		approve := func() {
			Expect(service.Approve(expID, teamLead)).To(Succeed())
			Expect(service.Approve(expID, tres)).To(Succeed())
		}

		BeforeEach(func() {
			exp, err := service.Submit(student, submitDTO())
			Expect(err).ToNot(HaveOccurred())
			expID = exp.ID
		})

		It("settles an approved expense and stamps the transaction", func() {
			approve()

			Expect(service.Reimburse(expID, tres, "TXN-123")).To(Succeed())

			exp, _ := service.GetByID(expID)
			Expect(exp.Status).To(Equal(expense.StatusReimbursed))
			Expect(*exp.TransactionID).To(Equal("TXN-123"))
			Expect(exp.ReimbursedAt).ToNot(BeNil())
		})

		It("requires a transaction reference", func() {
			approve()

			err := service.Reimburse(expID, tres, "")

			Expect(err).To(Equal(expense.ErrMissingTransactionRef))
		})

		It("refuses before full approval", func() {
			err := service.Reimburse(expID, tres, "TXN-123")

			Expect(err).To(Equal(expense.ErrInvalidStatus))
		})

		It("refuses when the submitter has no payout handle", func() {
			carter := user.User{ID: 5, Username: "student3", DisplayName: "Carter", Role: user.RoleStudent}
			exp, err := service.Submit(carter, submitDTO())
			Expect(err).ToNot(HaveOccurred())
			Expect(service.Approve(exp.ID, teamLead)).To(Succeed())
			Expect(service.Approve(exp.ID, tres)).To(Succeed())
			before := len(mockRepo.auditTrail)

			err = service.Reimburse(exp.ID, tres, "TXN-456")

			Expect(err).To(Equal(expense.ErrMissingPayoutID))
			Expect(mockRepo.auditTrail).To(HaveLen(before))

			got, _ := service.GetByID(exp.ID)
			Expect(got.Status).To(Equal(expense.StatusApproved))
		})

		It("records the payout destination in the audit trail", func() {
			approve()

			Expect(service.Reimburse(expID, tres, "TXN-123")).To(Succeed())

			last := mockRepo.auditTrail[len(mockRepo.auditTrail)-1]
			Expect(last.Action).To(ContainSubstring("Siuuu@okhdfcbank"))
			Expect(last.Action).To(ContainSubstring("TXN-123"))
		})

		It("denies reimbursement by the team lead", func() {
			approve()

			err := service.Reimburse(expID, teamLead, "TXN-123")

			Expect(err).To(Equal(auth.ErrForbidden))
		})
	})

	Describe("AddComment", func() {
		var expID int64

		BeforeEach(func() {
			exp, err := service.Submit(student, submitDTO())
			Expect(err).ToNot(HaveOccurred())
			expID = exp.ID
		})

		It("appends comments in insertion order", func() {
			Expect(service.AddComment(expID, teamLead, "looks fine")).To(Succeed())
			Expect(service.AddComment(expID, student, "thanks")).To(Succeed())

			exp, _ := service.GetByID(expID)
			Expect(exp.Comments).To(HaveLen(2))
			Expect(exp.Comments[0].Text).To(Equal("looks fine"))
			Expect(exp.Comments[1].Text).To(Equal("thanks"))
		})

		It("rejects empty text", func() {
			err := service.AddComment(expID, teamLead, "")

			Expect(err).To(HaveOccurred())
		})

		It("still accepts comments on a rejected expense", func() {
			Expect(service.Reject(expID, teamLead, "duplicate claim")).To(Succeed())

			Expect(service.AddComment(expID, student, "understood")).To(Succeed())
		})
	})

	Describe("PendingForRole", func() {
		BeforeEach(func() {
			exp, err := service.Submit(student, submitDTO())
			Expect(err).ToNot(HaveOccurred())
			_ = exp
		})

		It("shows fresh submissions to the team lead", func() {
			pending, err := service.PendingForRole(teamLead, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
		})

		It("hides fresh submissions from the treasurer", func() {
			pending, err := service.PendingForRole(tres, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(BeEmpty())
		})

		It("shows approved expenses to the treasurer awaiting payout", func() {
			exps, _ := service.PendingForRole(teamLead, 20, 0)
			Expect(service.Approve(exps[0].ID, teamLead)).To(Succeed())
			Expect(service.Approve(exps[0].ID, tres)).To(Succeed())

			pending, err := service.PendingForRole(tres, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
		})

		It("returns nothing for a student", func() {
			pending, err := service.PendingForRole(student, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(BeEmpty())
		})
	})
})
