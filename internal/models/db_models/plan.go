package db_models

type PlanType string

const (
	PlanFree PlanType = "FREE"
	PlanPro  PlanType = "PRO"
)

func (p PlanType) Valid() bool {
	return p == PlanFree || p == PlanPro
}
