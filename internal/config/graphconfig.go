package config

// Property paths read from the worker configuration. Naming matches the
// properties file the worker process is bootstrapped with; loading that
// file is outside this module's scope.
const (
	PropMaxLabelSize = "org.jasminegraph.nativestore.max.label.size"
	PropPartitions   = "org.jasminegraph.server.npartitions"
)

// GraphConfig is immutable for the lifetime of one query.
type GraphConfig struct {
	MaxLabelSize int64
	GraphID      string
	PartitionID  int
	AppTag       string
}

// NPartitions reads the configured partition count for the cluster this
// worker belongs to.
func NPartitions(c Config) int {
	return c.Get(PropPartitions).Int(1)
}

// MaxLabelSize reads the configured maximum label size for the native
// store this worker reads from.
func MaxLabelSize(c Config) int64 {
	return c.Get(PropMaxLabelSize).Int64(0)
}
