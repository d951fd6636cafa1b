package types

// Status is a type for the lifecycle status of a persisted resource in the database.
// This is distinct from domain statuses like SubscriptionStatus and is used to
// soft-delete or archive rows without physically removing them.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
