package advance_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/festflow/festflow/internal/advance"
	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/user"
)

func TestAdvance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Advance Module Suite")
}

// Mock repository for testing. UpdateAtomic mirrors the transactional
// contract: the audit entry is recorded only when the mutation
// succeeds.
type mockAdvanceRepository struct {
	advances    map[int64]*advance.Advance
	auditTrail  []*audit.Entry
	createError error
	nextID      int64
}

func newMockAdvanceRepository() *mockAdvanceRepository {
	return &mockAdvanceRepository{
		advances: make(map[int64]*advance.Advance),
		nextID:   1,
	}
}

func (m *mockAdvanceRepository) Create(adv *advance.Advance, entry *audit.Entry) error {
	if m.createError != nil {
		return m.createError
	}
	adv.ID = m.nextID
	m.nextID++
	m.advances[adv.ID] = adv
	m.auditTrail = append(m.auditTrail, entry)
	return nil
}

func (m *mockAdvanceRepository) GetByID(id int64) (*advance.Advance, error) {
	adv, exists := m.advances[id]
	if !exists {
		return nil, advance.ErrNotFound
	}
	return adv, nil
}

func (m *mockAdvanceRepository) GetByRequester(username string, limit, offset int) ([]*advance.Advance, error) {
	var result []*advance.Advance
	for _, adv := range m.advances {
		if adv.RequesterUsername == username {
			result = append(result, adv)
		}
	}
	return result, nil
}

func (m *mockAdvanceRepository) GetByStatuses(statuses []advance.Status, limit, offset int) ([]*advance.Advance, error) {
	var result []*advance.Advance
	for _, adv := range m.advances {
		for _, s := range statuses {
			if adv.Status == s {
				result = append(result, adv)
				break
			}
		}
	}
	return result, nil
}

func (m *mockAdvanceRepository) UpdateAtomic(id int64, mutate func(*advance.Advance) (*audit.Entry, error)) error {
	adv, exists := m.advances[id]
	if !exists {
		return advance.ErrNotFound
	}
	copied := *adv
	entry, err := mutate(&copied)
	if err != nil {
		return err
	}
	m.advances[id] = &copied
	m.auditTrail = append(m.auditTrail, entry)
	return nil
}

var _ = Describe("AdvanceService", func() {
	var (
		service  *advance.Service
		mockRepo *mockAdvanceRepository

		student  user.User
		teamLead user.User
		tres     user.User
	)

	requestDTO := func() advance.RequestAdvanceDTO {
		return advance.RequestAdvanceDTO{
			EventID: 1,
			Vendor:  "Decor Mart",
			Purpose: "Stage backdrop",
			Amount:  decimal.NewFromInt(8000),
		}
	}

	BeforeEach(func() {
		mockRepo = newMockAdvanceRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = advance.NewService(mockRepo, logger)

		student = user.User{ID: 3, Username: "student1", DisplayName: "Siuuu", Role: user.RoleStudent}
		teamLead = user.User{ID: 2, Username: "team_lead", DisplayName: "Ronaldo", Role: user.RoleTeamLead}
		tres = user.User{ID: 1, Username: "treasurer", DisplayName: "Sanjai", Role: user.RoleTreasurer}
	})

	Describe("Request", func() {
		It("creates a pending advance", func() {
			adv, err := service.Request(student, requestDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(adv.Status).To(Equal(advance.StatusPending))
			Expect(adv.RequesterUsername).To(Equal("student1"))
			Expect(mockRepo.auditTrail).To(HaveLen(1))
		})

		It("requires a vendor and purpose", func() {
			dto := requestDTO()
			dto.Vendor = ""

			_, err := service.Request(student, dto)

			Expect(err).To(HaveOccurred())

			dto = requestDTO()
			dto.Purpose = ""

			_, err = service.Request(student, dto)

			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative amount", func() {
			dto := requestDTO()
			dto.Amount = decimal.NewFromInt(-10)

			_, err := service.Request(student, dto)

			Expect(err).To(HaveOccurred())
		})

		It("denies requests by the treasurer", func() {
			_, err := service.Request(tres, requestDTO())

			Expect(err).To(Equal(auth.ErrForbidden))
		})
	})

	Describe("lifecycle", func() {
		var advID int64

		BeforeEach(func() {
			adv, err := service.Request(student, requestDTO())
			Expect(err).ToNot(HaveOccurred())
			advID = adv.ID
		})

		It("walks the strict chain pending, approved, paid, closed", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())
			got, _ := service.GetByID(advID)
			Expect(got.Status).To(Equal(advance.StatusApprovedByTeamLead))
			Expect(*got.ApprovedBy).To(Equal("Ronaldo"))

			Expect(service.MarkPaid(advID, tres, "TXN-900")).To(Succeed())
			got, _ = service.GetByID(advID)
			Expect(got.Status).To(Equal(advance.StatusPaid))
			Expect(*got.PaidTransactionID).To(Equal("TXN-900"))
			Expect(got.PaidAt).ToNot(BeNil())

			Expect(service.Close(advID, student, "/uploads/final-receipt.jpg")).To(Succeed())
			got, _ = service.GetByID(advID)
			Expect(got.Status).To(Equal(advance.StatusClosed))
			Expect(*got.ReceiptURL).To(Equal("/uploads/final-receipt.jpg"))
		})

		It("refuses payment before approval", func() {
			err := service.MarkPaid(advID, tres, "TXN-900")

			Expect(err).To(Equal(advance.ErrInvalidStatus))
		})

		It("refuses closing before payment", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())

			err := service.Close(advID, student, "/uploads/final-receipt.jpg")

			Expect(err).To(Equal(advance.ErrInvalidStatus))
		})

		It("refuses a repeat approval", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())

			err := service.Approve(advID, teamLead)

			Expect(err).To(Equal(advance.ErrInvalidStatus))
		})

		It("refuses closing someone else's advance", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())
			Expect(service.MarkPaid(advID, tres, "TXN-900")).To(Succeed())

			other := user.User{ID: 4, Username: "student2", DisplayName: "Pessi", Role: user.RoleStudent}
			err := service.Close(advID, other, "/uploads/final-receipt.jpg")

			Expect(err).To(Equal(auth.ErrForbidden))
		})

		It("requires a receipt reference to close", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())
			Expect(service.MarkPaid(advID, tres, "TXN-900")).To(Succeed())

			err := service.Close(advID, student, "")

			Expect(err).To(Equal(advance.ErrMissingReceipt))
		})

		It("requires a transaction reference to pay", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())

			err := service.MarkPaid(advID, tres, "")

			Expect(err).To(Equal(advance.ErrMissingTransactionRef))
		})

		It("writes no audit entry on a failed transition", func() {
			before := len(mockRepo.auditTrail)

			_ = service.MarkPaid(advID, tres, "TXN-900")

			Expect(mockRepo.auditTrail).To(HaveLen(before))
		})
	})

	Describe("Reject", func() {
		var advID int64

		BeforeEach(func() {
			adv, err := service.Request(student, requestDTO())
			Expect(err).ToNot(HaveOccurred())
			advID = adv.ID
		})

		It("terminates a pending advance and files the reason", func() {
			Expect(service.Reject(advID, teamLead, "vendor unverified")).To(Succeed())

			got, _ := service.GetByID(advID)
			Expect(got.Status).To(Equal(advance.StatusRejected))
			Expect(got.Comments).To(HaveLen(1))
			Expect(got.Comments[0].Text).To(Equal("vendor unverified"))
		})

		It("requires a reason", func() {
			err := service.Reject(advID, teamLead, "")

			Expect(err).To(Equal(advance.ErrMissingReason))
		})

		It("refuses rejection after approval", func() {
			Expect(service.Approve(advID, teamLead)).To(Succeed())

			err := service.Reject(advID, teamLead, "too late")

			Expect(err).To(Equal(advance.ErrInvalidStatus))
		})
	})

	Describe("PendingForRole", func() {
		BeforeEach(func() {
			_, err := service.Request(student, requestDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("shows fresh requests to the team lead", func() {
			pending, err := service.PendingForRole(teamLead, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
		})

		It("shows approved requests to the treasurer", func() {
			fresh, _ := service.PendingForRole(teamLead, 20, 0)
			Expect(service.Approve(fresh[0].ID, teamLead)).To(Succeed())

			pending, err := service.PendingForRole(tres, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))

			forLead, _ := service.PendingForRole(teamLead, 20, 0)
			Expect(forLead).To(BeEmpty())
		})
	})
})
