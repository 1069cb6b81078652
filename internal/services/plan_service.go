package services

import (
	"fmt"

	"linkhub/internal/models/db_models"
)

// Unlimited marks a limit that never denies.
const Unlimited int64 = -1

type PlanLimits struct {
	DailyLinkCreation int64 `json:"dailyLinkCreation"`
	MaxActiveLinks    int64 `json:"maxActiveLinks"`
	CustomSlug        bool  `json:"customSlug"`
	Expiry            bool  `json:"expiry"`
	ClickLimit        bool  `json:"clickLimit"`
}

type QuotaCheck struct {
	Allowed bool
	Reason  string
}

var planLimits = map[db_models.PlanType]PlanLimits{
	db_models.PlanFree: {
		DailyLinkCreation: 5,
		MaxActiveLinks:    30,
	},
	db_models.PlanPro: {
		DailyLinkCreation: Unlimited,
		MaxActiveLinks:    Unlimited,
		CustomSlug:        true,
		Expiry:            true,
		ClickLimit:        true,
	},
}

type PlanServiceInterface interface {
	GetPlanLimits(plan db_models.PlanType) PlanLimits
	CheckDailyLimit(plan db_models.PlanType, todayCount int64) QuotaCheck
	CheckActiveLinksLimit(plan db_models.PlanType, activeCount int64) QuotaCheck
	CanUseCustomSlug(plan db_models.PlanType) bool
	CanUseExpiry(plan db_models.PlanType) bool
	CanUseClickLimit(plan db_models.PlanType) bool
}

type PlanService struct{}

func NewPlanService() PlanServiceInterface {
	return &PlanService{}
}

// GetPlanLimits falls back to FREE for unknown plan types.
func (p *PlanService) GetPlanLimits(plan db_models.PlanType) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[db_models.PlanFree]
}

func (p *PlanService) CheckDailyLimit(plan db_models.PlanType, todayCount int64) QuotaCheck {
	limit := p.GetPlanLimits(plan).DailyLinkCreation
	if limit != Unlimited && todayCount >= limit {
		return QuotaCheck{
			Reason: fmt.Sprintf("Daily link creation limit reached (%d per day)", limit),
		}
	}
	return QuotaCheck{Allowed: true}
}

func (p *PlanService) CheckActiveLinksLimit(plan db_models.PlanType, activeCount int64) QuotaCheck {
	limit := p.GetPlanLimits(plan).MaxActiveLinks
	if limit != Unlimited && activeCount >= limit {
		return QuotaCheck{
			Reason: fmt.Sprintf("Active link limit reached (%d links)", limit),
		}
	}
	return QuotaCheck{Allowed: true}
}

func (p *PlanService) CanUseCustomSlug(plan db_models.PlanType) bool {
	return p.GetPlanLimits(plan).CustomSlug
}

func (p *PlanService) CanUseExpiry(plan db_models.PlanType) bool {
	return p.GetPlanLimits(plan).Expiry
}

func (p *PlanService) CanUseClickLimit(plan db_models.PlanType) bool {
	return p.GetPlanLimits(plan).ClickLimit
}
