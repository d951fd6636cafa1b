package types

type RunMode string

const (
	// ModeLocal runs the API server with local defaults
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

const (
	HeaderRequestID    = "X-Request-ID"
	HeaderWebhookToken = "X-Webhook-Token"
)
