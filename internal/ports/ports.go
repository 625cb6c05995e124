package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Catalog
	CatalogProvider CatalogProviderManager

	// Cache
	CacheStore   KeyValueStore
	CacheMetrics CacheMetrics

	// Collections and ownership
	CollectionRepository CollectionRepository
	OwnershipRepository  OwnershipRepository
	OwnershipFeed        OwnershipFeed
	OwnershipMetrics     OwnershipMetrics
	ChangeNotifier       ChangeNotifier

	// Infrastructure
	HealthCheckers map[string]HealthChecker
	ConfigProvider ConfigProvider
	Logger         Logger
	Database       interface{}
}
