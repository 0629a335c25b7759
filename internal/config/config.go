package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Gmail    GmailConfig    `mapstructure:"gmail" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`

	// MaxRetries caps how many times a transient generation failure is
	// retried before the call is abandoned.
	MaxRetries int `mapstructure:"max_retries" validate:"required,gt=0"`

	// RetryDelaySeconds is the base delay for exponential backoff between
	// generation retries.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"required,gt=0"`
}

// GmailConfig contains the OAuth client settings used to reach the mail
// provider on behalf of the operator. Credential acquisition (the consent
// flow that produces the refresh token) happens outside this service.
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" validate:"required"`
	RefreshToken string `mapstructure:"refresh_token" validate:"required"`
}

// PipelineConfig contains the knobs for thread retrieval and the
// human-feedback checkpoints.
type PipelineConfig struct {
	// ThreadCount is the target number of distinct threads fetched per run.
	ThreadCount int `mapstructure:"thread_count" validate:"required,gt=0"`

	// MessageCap bounds how many messages of a single thread are retained.
	MessageCap int `mapstructure:"message_cap" validate:"required,gt=0"`

	// PageSize is the provider page size used while listing threads.
	PageSize int `mapstructure:"page_size" validate:"required,gt=0"`

	// FeedbackTimeoutSeconds bounds how long a checkpoint waits for the
	// operator before falling back to the affirmative default outcome.
	FeedbackTimeoutSeconds int `mapstructure:"feedback_timeout_seconds" validate:"required,gt=0"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`
}
