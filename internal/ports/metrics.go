package ports

import "time"

// CatalogMetrics tracks outbound catalog provider calls
type CatalogMetrics interface {
	RecordFetch(provider, operation string, success bool, duration time.Duration)
}

// OwnershipMetrics tracks ownership writes and live subscriptions
type OwnershipMetrics interface {
	RecordWrite(operation string, records int, success bool)
	SubscriptionOpened()
	SubscriptionClosed()
}
