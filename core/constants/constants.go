package constants

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Ledger settings
const (
	// LedgerMaxRetries bounds local retries on serialization/deadlock
	// failures before surfacing a contention error.
	LedgerMaxRetries = 3
)

// Event settings
const (
	// DefaultEventDurationHours is how long an event without an explicit
	// end date is considered to run before it counts as completed.
	DefaultEventDurationHours = 24

	// MaxRecurrenceOccurrences caps how many children a single expansion
	// may generate, regardless of the rule's termination condition.
	MaxRecurrenceOccurrences = 366
)

// Redis key prefixes
const (
	RedisKeyCategorySchema = "category_schema:"
)

// Cache TTLs in seconds
const (
	CategorySchemaCacheTTL = 600
)

// Asynq task types and queues
const (
	TaskNotificationDeliver = "notification:deliver"
	TaskEventSyncStatus     = "event:sync_status"

	QueueDefault       = "default"
	QueueNotifications = "notifications"
)

// JWT settings
const (
	TokenExpiryHours = 72
)
