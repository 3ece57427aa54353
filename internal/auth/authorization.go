package auth

import (
	"github.com/festflow/festflow/internal"
	"github.com/festflow/festflow/internal/user"
)

// Action names every operation the workflow engines and read models
// gate on a role.
type Action string

const (
	ActionSubmitExpense    Action = "expense:submit"
	ActionApproveExpense   Action = "expense:approve"
	ActionRejectExpense    Action = "expense:reject"
	ActionReimburseExpense Action = "expense:reimburse"
	ActionCommentExpense   Action = "expense:comment"

	ActionRequestAdvance Action = "advance:request"
	ActionApproveAdvance Action = "advance:approve"
	ActionRejectAdvance  Action = "advance:reject"
	ActionPayAdvance     Action = "advance:pay"
	ActionCloseAdvance   Action = "advance:close"
	ActionCommentAdvance Action = "advance:comment"

	ActionViewReports  Action = "report:view"
	ActionViewAuditLog Action = "audit:view"
	ActionEditPayoutID Action = "user:edit_payout"
)

// permissions is the single authorization table. Every service consults
// it exactly once per operation through Allowed; no role checks live
// anywhere else.
var permissions = map[user.Role]map[Action]bool{
	user.RoleStudent: {
		ActionSubmitExpense:  true,
		ActionCommentExpense: true,
		ActionRequestAdvance: true,
		ActionCloseAdvance:   true,
		ActionCommentAdvance: true,
		ActionEditPayoutID:   true,
	},
	user.RoleTeamLead: {
		ActionApproveExpense: true,
		ActionRejectExpense:  true,
		ActionCommentExpense: true,
		ActionApproveAdvance: true,
		ActionRejectAdvance:  true,
		ActionCommentAdvance: true,
	},
	user.RoleTreasurer: {
		ActionApproveExpense:   true,
		ActionRejectExpense:    true,
		ActionReimburseExpense: true,
		ActionCommentExpense:   true,
		ActionPayAdvance:       true,
		ActionCommentAdvance:   true,
		ActionViewReports:      true,
		ActionViewAuditLog:     true,
	},
}

// Allowed reports whether the role may perform the action.
func Allowed(role user.Role, action Action) bool {
	return permissions[role][action]
}

// ErrForbidden is what services return when the table says no.
var ErrForbidden = internal.NewForbiddenError("action not allowed for role", internal.ErrCodeActionNotAllowed)

// Authorize is the one-call check services make at the top of each
// operation.
func Authorize(actor user.User, action Action) error {
	if !Allowed(actor.Role, action) {
		return ErrForbidden
	}
	return nil
}
