package types

// PlanPeriod is the billing cycle of a plan
type PlanPeriod string

const (
	PlanPeriodMonthly PlanPeriod = "MONTHLY"
	PlanPeriodYearly  PlanPeriod = "YEARLY"
	// PlanPeriodSingle is a one-off purchase with no recurring billing
	PlanPeriodSingle PlanPeriod = "SINGLE"
)

func (p PlanPeriod) String() string {
	return string(p)
}

func (p PlanPeriod) Validate() bool {
	switch p {
	case PlanPeriodMonthly, PlanPeriodYearly, PlanPeriodSingle:
		return true
	}
	return false
}
