package plan

import (
	"time"

	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a benefits-club membership plan. Plans are read-only reference data
// to the settlement engine; they are managed by the admin surface.
type Plan struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal  `db:"price" json:"price"`
	Period      types.PlanPeriod `db:"period" json:"period"`

	// Benefits is the ordered set of benefit attachments, ascending by
	// Position. Loaded eagerly with the plan.
	Benefits []*Benefit `db:"-" json:"benefits"`

	types.BaseModel
}

// Benefit is a single benefit attachment on a plan. Percentage applies to
// DISCOUNT and CASHBACK types; Multiplier applies to POINTS.
type Benefit struct {
	ID         string            `db:"id" json:"id"`
	PlanID     string            `db:"plan_id" json:"plan_id"`
	Type       types.BenefitType `db:"type" json:"type"`
	Percentage decimal.Decimal   `db:"percentage" json:"percentage"`
	Multiplier decimal.Decimal   `db:"multiplier" json:"multiplier"`
	Position   int               `db:"position" json:"position"`

	types.BaseModel
}

func (p *Plan) TableName() string {
	return "plans"
}

func (b *Benefit) TableName() string {
	return "plan_benefits"
}

// IsFree reports whether checkout can activate the plan without payment
func (p *Plan) IsFree() bool {
	return p.Price.LessThanOrEqual(decimal.Zero)
}

// EffectiveBenefit resolves which attachment of the given type applies at
// settlement time. When a plan carries duplicates of one type, the
// last-by-position attachment wins; this is the explicit, tested resolution
// policy. Returns nil if the plan has no benefit of that type.
func (p *Plan) EffectiveBenefit(benefitType types.BenefitType) *Benefit {
	var effective *Benefit
	for _, b := range p.Benefits {
		if b.Type != benefitType {
			continue
		}
		if effective == nil || b.Position >= effective.Position {
			effective = b
		}
	}
	return effective
}

// DiscountPercent returns the plan's discount percentage, zero if none
func (p *Plan) DiscountPercent() decimal.Decimal {
	if b := p.EffectiveBenefit(types.BenefitTypeDiscount); b != nil {
		return b.Percentage
	}
	return decimal.Zero
}

// CashbackPercent returns the plan's cashback percentage, zero if none
func (p *Plan) CashbackPercent() decimal.Decimal {
	if b := p.EffectiveBenefit(types.BenefitTypeCashback); b != nil {
		return b.Percentage
	}
	return decimal.Zero
}

// PointsMultiplier returns the plan's points multiplier, zero if none
func (p *Plan) PointsMultiplier() decimal.Decimal {
	if b := p.EffectiveBenefit(types.BenefitTypePoints); b != nil {
		return b.Multiplier
	}
	return decimal.Zero
}

// HasExclusiveAccess reports whether the plan grants exclusive partner perks
func (p *Plan) HasExclusiveAccess() bool {
	return p.EffectiveBenefit(types.BenefitTypeExclusiveAccess) != nil
}

// NextPeriodEnd returns the validity window end for a payment confirmed at
// the given time. SINGLE plans are non-expiring and return nil.
func (p *Plan) NextPeriodEnd(from time.Time) *time.Time {
	switch p.Period {
	case types.PlanPeriodMonthly:
		end := from.AddDate(0, 1, 0)
		return &end
	case types.PlanPeriodYearly:
		end := from.AddDate(1, 0, 0)
		return &end
	default:
		return nil
	}
}

func (b *Benefit) Validate() error {
	if !b.Type.Validate() {
		return ierr.NewError("invalid benefit type").
			WithHint("Benefit type must be one of DISCOUNT, CASHBACK, POINTS, EXCLUSIVE_ACCESS").
			WithReportableDetails(map[string]any{
				"type": b.Type,
			}).
			Mark(ierr.ErrValidation)
	}

	switch b.Type {
	case types.BenefitTypeDiscount, types.BenefitTypeCashback:
		if b.Percentage.IsNegative() || b.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ierr.NewError("benefit percentage out of range").
				WithHint("Percentage must be between 0 and 100").
				WithReportableDetails(map[string]any{
					"type":       b.Type,
					"percentage": b.Percentage,
				}).
				Mark(ierr.ErrValidation)
		}
	case types.BenefitTypePoints:
		if b.Multiplier.IsNegative() {
			return ierr.NewError("points multiplier must not be negative").
				WithHint("Points multiplier must be zero or positive").
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}
