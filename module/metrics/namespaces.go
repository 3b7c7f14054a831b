package metrics

// Prometheus metric namespaces
const (
	namespaceCCR = "ccr"
)

// Prometheus metric subsystems
const (
	subsystemBadger      = "badger"
	subsystemCache       = "cache"
	subsystemExactlyOnce = "exactly_once"
	subsystemReturnCodes = "return_codes"
	subsystemLock        = "lock"
	subsystemEngine      = "engine"
	subsystemHTTP        = "http"
)
