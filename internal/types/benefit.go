package types

// BenefitType is the kind of benefit a plan grants at the point of sale
type BenefitType string

const (
	// BenefitTypeDiscount reduces the gross sale amount by a percentage
	BenefitTypeDiscount BenefitType = "DISCOUNT"
	// BenefitTypeCashback accrues a percentage of the paid amount to the
	// (subscriber, partner) cashback balance
	BenefitTypeCashback BenefitType = "CASHBACK"
	// BenefitTypePoints multiplies loyalty points earned on the paid amount
	BenefitTypePoints BenefitType = "POINTS"
	// BenefitTypeExclusiveAccess gates partner perks; it carries no numeric
	// configuration and does not participate in settlement math
	BenefitTypeExclusiveAccess BenefitType = "EXCLUSIVE_ACCESS"
)

func (b BenefitType) String() string {
	return string(b)
}

func (b BenefitType) Validate() bool {
	switch b {
	case BenefitTypeDiscount, BenefitTypeCashback, BenefitTypePoints, BenefitTypeExclusiveAccess:
		return true
	}
	return false
}
