package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Terminal  MTerminalConfig  `yaml:"terminal"`
	Cache     MCacheConfig     `yaml:"cache"`
	Broadcast MBroadcastConfig `yaml:"broadcast"`
	Market    MMarketConfig    `yaml:"market"`
}

type MTerminalConfig struct {
	Endpoint          string `yaml:"endpoint"`
	RequestTimeout    int    `yaml:"timeout"`             // seconds
	MaxRetries        int    `yaml:"retries"`             // per-request retries
	ConnectAttempts   int    `yaml:"connect_attempts"`    // initial connect attempts
	ConnectRetryDelay int    `yaml:"connect_retry_delay"` // seconds between connect attempts
	PollIntervalMs    int    `yaml:"poll_interval_ms"`    // tick polling cadence
	UserAgent         string `yaml:"user_agent"`
}

type MCacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

type MBroadcastConfig struct {
	IntervalSeconds       int `yaml:"interval_seconds"`        // market summary / account / rollover cadence
	HealthIntervalSeconds int `yaml:"health_interval_seconds"` // health push + reconnect check cadence
}

type MMarketConfig struct {
	DefaultTimeframe    string   `yaml:"default_timeframe"`
	SupportedTimeframes []string `yaml:"supported_timeframes"`
	MaxCandles          int      `yaml:"max_candles"`
	CalendarMIC         string   `yaml:"calendar_mic"` // venue calendar for daily rollover (ISO 10383)
}
