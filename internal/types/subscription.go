package types

// SubscriptionStatus is the persisted plan-enrollment status of a subscriber.
// Expiration is a derived read-time condition (see subscriber.EffectiveStatus);
// the persisted status only becomes EXPIRED through the explicit cron sweep.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusCanceled  SubscriptionStatus = "CANCELED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	// SubscriptionStatusInactive is a terminal administrative state.
	SubscriptionStatusInactive SubscriptionStatus = "INACTIVE"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() bool {
	switch s {
	case SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusSuspended,
		SubscriptionStatusCanceled,
		SubscriptionStatusExpired,
		SubscriptionStatusInactive:
		return true
	}
	return false
}
