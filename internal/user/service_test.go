package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Module Suite")
}

type mockUserRepository struct {
	users       map[string]*user.User
	auditTrail  []*audit.Entry
	updateError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: map[string]*user.User{
			"student1": {ID: 3, Username: "student1", DisplayName: "Siuuu", Role: user.RoleStudent, PayoutID: "Siuuu@okhdfcbank"},
			"student3": {ID: 5, Username: "student3", DisplayName: "Carter", Role: user.RoleStudent},
		},
	}
}

func (m *mockUserRepository) GetByUsername(username string) (*user.User, error) {
	u, exists := m.users[username]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) List() ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserRepository) UpdatePayoutID(username, payoutID string, entry *audit.Entry) error {
	if m.updateError != nil {
		return m.updateError
	}
	u, exists := m.users[username]
	if !exists {
		return user.ErrNotFound
	}
	u.PayoutID = payoutID
	m.auditTrail = append(m.auditTrail, entry)
	return nil
}

var _ = Describe("UserService", func() {
	var (
		service  *user.Service
		mockRepo *mockUserRepository
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, logger)
	})

	Describe("UpdatePayoutID", func() {
		It("updates the actor's own handle and audits it", func() {
			carter := user.User{ID: 5, Username: "student3", DisplayName: "Carter", Role: user.RoleStudent}

			err := service.UpdatePayoutID(carter, user.UpdatePayoutDTO{PayoutID: "Carter@okaxis"})

			Expect(err).ToNot(HaveOccurred())

			got, _ := service.GetByUsername("student3")
			Expect(got.PayoutID).To(Equal("Carter@okaxis"))
			Expect(got.HasPayoutID()).To(BeTrue())

			Expect(mockRepo.auditTrail).To(HaveLen(1))
			Expect(mockRepo.auditTrail[0].ActorName).To(Equal("Carter"))
			Expect(mockRepo.auditTrail[0].Action).To(ContainSubstring("Carter@okaxis"))
		})

		It("rejects an empty handle", func() {
			carter := user.User{ID: 5, Username: "student3", DisplayName: "Carter", Role: user.RoleStudent}

			err := service.UpdatePayoutID(carter, user.UpdatePayoutDTO{})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.auditTrail).To(BeEmpty())
		})
	})

	Describe("GetByUsername", func() {
		It("resolves a known user", func() {
			u, err := service.GetByUsername("student1")

			Expect(err).ToNot(HaveOccurred())
			Expect(u.DisplayName).To(Equal("Siuuu"))
		})

		It("returns ErrNotFound for unknown users", func() {
			_, err := service.GetByUsername("ghost")

			Expect(err).To(Equal(user.ErrNotFound))
		})
	})

	Describe("Usernames", func() {
		It("lists every directory entry", func() {
			names, err := service.Usernames()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(ConsistOf("student1", "student3"))
		})
	})

	Describe("HasPayoutID", func() {
		It("is false for an empty handle", func() {
			u, _ := service.GetByUsername("student3")

			Expect(u.HasPayoutID()).To(BeFalse())
		})
	})

	Describe("ParseRole", func() {
		It("accepts the three known roles", func() {
			for _, name := range []string{"student", "team_lead", "treasurer"} {
				_, err := user.ParseRole(name)
				Expect(err).ToNot(HaveOccurred())
			}
		})

		It("rejects anything else", func() {
			_, err := user.ParseRole("admin")

			Expect(err).To(HaveOccurred())
		})
	})
})
