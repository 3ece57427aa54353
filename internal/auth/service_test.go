package auth

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/festflow/festflow/internal/user"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock directory for testing
type mockDirectory struct {
	users       map[string]*user.User
	returnError error
}

func newMockDirectory() *mockDirectory {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)

	return &mockDirectory{
		users: map[string]*user.User{
			"treasurer": {ID: 1, Username: "treasurer", DisplayName: "Sanjai", Role: user.RoleTreasurer, PasswordHash: string(hash)},
			"student1":  {ID: 3, Username: "student1", DisplayName: "Siuuu", Role: user.RoleStudent, PasswordHash: string(hash)},
		},
	}
}

func (m *mockDirectory) GetByUsername(username string) (*user.User, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	u, exists := m.users[username]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service *Service
		dir     *mockDirectory
	)

	ginkgo.BeforeEach(func() {
		dir = newMockDirectory()
		tokens := NewJWTTokenGenerator(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcdef",
			15*time.Minute,
			24*time.Hour,
		)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(dir, tokens, logger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "student1", Password: "pw"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "student1", Password: "nope"})

			gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown user with the same error", func() {
			_, err := service.Authenticate(LoginDTO{Username: "ghost", Password: "pw"})

			gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
		})

		ginkgo.It("rejects empty credentials", func() {
			_, err := service.Authenticate(LoginDTO{})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ResolveActor", func() {
		ginkgo.It("maps an access token back to the directory user", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "treasurer", Password: "pw"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			actor, err := service.ResolveActor(tokens.AccessToken)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(actor.Username).To(gomega.Equal("treasurer"))
			gomega.Expect(actor.Role).To(gomega.Equal(user.RoleTreasurer))
		})

		ginkgo.It("rejects a refresh token used as an access token", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "treasurer", Password: "pw"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveActor(tokens.RefreshToken)

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})

		ginkgo.It("rejects garbage tokens", func() {
			_, err := service.ResolveActor("not-a-token")

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("rotates a valid refresh token into a new pair", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "student1", Password: "pw"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rotated, err := service.RefreshTokens(tokens.RefreshToken)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rotated.AccessToken).ToNot(gomega.BeEmpty())

			actor, err := service.ResolveActor(rotated.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(actor.Username).To(gomega.Equal("student1"))
		})

		ginkgo.It("rejects an access token used as a refresh token", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "student1", Password: "pw"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(tokens.AccessToken)

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})
})

var _ = ginkgo.Describe("Authorization table", func() {
	ginkgo.It("lets students submit expenses but not approve them", func() {
		gomega.Expect(Allowed(user.RoleStudent, ActionSubmitExpense)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleStudent, ActionApproveExpense)).To(gomega.BeFalse())
		gomega.Expect(Allowed(user.RoleStudent, ActionReimburseExpense)).To(gomega.BeFalse())
	})

	ginkgo.It("lets the team lead review but not settle", func() {
		gomega.Expect(Allowed(user.RoleTeamLead, ActionApproveExpense)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTeamLead, ActionRejectExpense)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTeamLead, ActionReimburseExpense)).To(gomega.BeFalse())
		gomega.Expect(Allowed(user.RoleTeamLead, ActionPayAdvance)).To(gomega.BeFalse())
		gomega.Expect(Allowed(user.RoleTeamLead, ActionSubmitExpense)).To(gomega.BeFalse())
	})

	ginkgo.It("reserves settlement and oversight for the treasurer", func() {
		gomega.Expect(Allowed(user.RoleTreasurer, ActionReimburseExpense)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTreasurer, ActionPayAdvance)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTreasurer, ActionViewReports)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTreasurer, ActionViewAuditLog)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTreasurer, ActionRequestAdvance)).To(gomega.BeFalse())
	})

	ginkgo.It("keeps closing an advance with the requesting student", func() {
		gomega.Expect(Allowed(user.RoleStudent, ActionCloseAdvance)).To(gomega.BeTrue())
		gomega.Expect(Allowed(user.RoleTreasurer, ActionCloseAdvance)).To(gomega.BeFalse())
	})

	ginkgo.It("allows comments from every role", func() {
		for _, role := range []user.Role{user.RoleStudent, user.RoleTeamLead, user.RoleTreasurer} {
			gomega.Expect(Allowed(role, ActionCommentExpense)).To(gomega.BeTrue())
			gomega.Expect(Allowed(role, ActionCommentAdvance)).To(gomega.BeTrue())
		}
	})

	ginkgo.It("denies everything for an unknown role", func() {
		gomega.Expect(Allowed(user.Role("admin"), ActionViewReports)).To(gomega.BeFalse())
	})

	ginkgo.It("Authorize returns ErrForbidden when the table says no", func() {
		student := user.User{Role: user.RoleStudent}

		gomega.Expect(Authorize(student, ActionSubmitExpense)).To(gomega.Succeed())
		gomega.Expect(Authorize(student, ActionViewAuditLog)).To(gomega.Equal(ErrForbidden))
	})
})
