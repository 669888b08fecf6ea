package collection

// Config holds configuration for collection rebuilds.
type Config struct {
	// RebuildWorkers is the number of background rebuild workers.
	RebuildWorkers int `mapstructure:"rebuild_workers" default:"2"`
	// QueueSize bounds the number of collections waiting for a rebuild.
	QueueSize int `mapstructure:"queue_size" default:"64"`
}
