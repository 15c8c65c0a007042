package config

// Config holds every setting read from the environment at startup.
type Config struct {
	ControlHost   string `envconfig:"CONTROL_HOST" required:"true" val:"0.0.0.0" description:"The address that the control session service binds to."`
	ControlPort   string `envconfig:"CONTROL_PORT" required:"true" val:"8069" description:"The port that the control session service binds to."`
	RelayHost     string `envconfig:"RELAY_HOST" required:"true" val:"0.0.0.0" description:"The address that the SFU datagram relay binds to."`
	RelayPort     string `envconfig:"RELAY_PORT" required:"true" val:"8070" description:"The port that the SFU datagram relay binds to."`
	EndpointTTL   string `envconfig:"ENDPOINT_TTL" required:"true" val:"2m" description:"How long a learned client media endpoint is kept before it's evicted for inactivity."`
	NotifyQueue   int    `envconfig:"NOTIFY_QUEUE_CAPACITY" required:"true" val:"16" description:"Bounded capacity of each connected user's membership-notification queue."`
	MaxSIDRetries int    `envconfig:"MAX_SID_RETRIES" required:"true" val:"10000" description:"Maximum random draws attempted when allocating a StreamID or RoomStreamID before reporting exhaustion."`
	LogLevel      string `envconfig:"LOG_LEVEL" required:"true" val:"info" description:"Set logging granularity. Possible values: 'trace', 'debug', 'info', 'warn', 'error'."`
}
