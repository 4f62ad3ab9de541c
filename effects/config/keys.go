package config

// Dotted keys of the YAML layout, used in validation errors.
const (
	delimiter = "."

	KeyLogLevel = "log_level"

	KeyAsyncPrefix     = "async"
	KeyAsyncBufferSize = KeyAsyncPrefix + delimiter + "buffer_size"
	KeyAsyncNumWorkers = KeyAsyncPrefix + delimiter + "num_workers"

	KeyNATSPrefix          = "nats"
	KeyNATSURL             = KeyNATSPrefix + delimiter + "url"
	KeyNATSSubjectPrefix   = KeyNATSPrefix + delimiter + "subject_prefix"
	KeyNATSConnectAttempts = KeyNATSPrefix + delimiter + "connect_attempts"
	KeyNATSConnectBackoff  = KeyNATSPrefix + delimiter + "connect_backoff"
)

// EnvPrefix prefixes every environment override, e.g. EFFECTS_ASYNC_NUM_WORKERS.
const EnvPrefix = "EFFECTS_"
