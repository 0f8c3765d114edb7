// Package mapping converts between domain models and API wire types.
package mapping

import (
	"github.com/chris/referral-earnings/pkg/api"
	"github.com/chris/referral-earnings/pkg/models"
)

// ToApiParticipant maps a domain participant to its API representation.
func ToApiParticipant(participant *models.Participant) *api.Participant {
	recruits := participant.Recruits
	if recruits == nil {
		recruits = []string{}
	}
	return &api.Participant{
		Id:            participant.Id,
		Name:          participant.Name,
		Email:         participant.Email,
		ReferralCode:  participant.ReferralCode,
		SponsorCode:   participant.SponsorCode,
		Level:         participant.Level,
		Recruits:      recruits,
		WalletBalance: participant.WalletBalance,
		Active:        participant.Active,
		CreatedAt:     participant.CreatedAt,
	}
}

// ToApiPurchase maps a domain purchase to its API representation.
func ToApiPurchase(purchase *models.Purchase) *api.Purchase {
	return &api.Purchase{
		Id:          purchase.Id,
		BuyerId:     purchase.BuyerId,
		Amount:      purchase.Amount,
		Description: purchase.Description,
		Qualifies:   purchase.Qualifies,
		CreatedAt:   purchase.CreatedAt,
	}
}

// ToApiEarning maps a domain ledger entry to its API representation.
func ToApiEarning(earning *models.Earning) *api.Earning {
	return &api.Earning{
		Id:         earning.Id,
		PayeeId:    earning.PayeeId,
		PayerId:    earning.PayerId,
		PurchaseId: earning.PurchaseId,
		Amount:     earning.Amount,
		Level:      earning.Level,
		CreatedAt:  earning.CreatedAt,
	}
}
