package user

import "github.com/festflow/festflow/internal"

// UpdatePayoutDTO carries a payout-id change for the calling user.
type UpdatePayoutDTO struct {
	PayoutID string `json:"payout_id"`
}

func (dto UpdatePayoutDTO) Validate() error {
	if dto.PayoutID == "" {
		return internal.NewValidationError("payout_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
