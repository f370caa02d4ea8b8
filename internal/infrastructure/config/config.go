package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	Vision     VisionConfig
	Connectors ConnectorsConfig
	Matching   MatchingConfig
	Cache      CacheConfig
	Scheduler  SchedulerConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for verifying access tokens issued by the auth backend
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// AllowUserHeader accepts X-User-ID instead of a bearer token (development only)
	AllowUserHeader bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
	MaxUploadSize     int64
}

// VisionConfig holds settings for the document vision model
type VisionConfig struct {
	APIKey      string
	APIKeyFile  string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxRetries  int
}

// OAuthProviderConfig holds OAuth client settings for one provider
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// ConnectorsConfig holds settings for linked document sources
type ConnectorsConfig struct {
	RedirectURL       string
	EncryptionKey     string
	EncryptionKeyFile string
	StateTTL          time.Duration
	GoogleDrive       OAuthProviderConfig
	Gmail             OAuthProviderConfig
}

// MatchingConfig holds the weights, tolerances and thresholds of PO/invoice matching
type MatchingConfig struct {
	WeightVendor         float64
	WeightPONumber       float64
	WeightAmount         float64
	WeightDate           float64
	WeightLineItems      float64
	AmountTolerance      float64
	QuantityTolerance    float64
	AutoApproveThreshold int
	ReviewThreshold      int
	CandidateLimit       int
	AutoMatchBatchSize   int
}

// ComparisonConfig converts the settings into the matching domain form
func (m MatchingConfig) ComparisonConfig() matching.ComparisonConfig {
	return matching.ComparisonConfig{
		Weights: matching.Weights{
			Vendor:    decimal.NewFromFloat(m.WeightVendor),
			PONumber:  decimal.NewFromFloat(m.WeightPONumber),
			Amount:    decimal.NewFromFloat(m.WeightAmount),
			Date:      decimal.NewFromFloat(m.WeightDate),
			LineItems: decimal.NewFromFloat(m.WeightLineItems),
		},
		AmountTolerance:      decimal.NewFromFloat(m.AmountTolerance),
		QuantityTolerance:    decimal.NewFromFloat(m.QuantityTolerance),
		AutoApproveThreshold: m.AutoApproveThreshold,
		ReviewThreshold:      m.ReviewThreshold,
		CandidateLimit:       m.CandidateLimit,
	}
}

// CacheConfig holds extraction cache settings
type CacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// SchedulerConfig holds scheduled auto-matching configuration
type SchedulerConfig struct {
	Enabled       bool
	AutoMatchCron string
	JobTimeout    time.Duration
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	ProfilingEnabled  bool
	PyroscopeEndpoint string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with NEXUS_ prefix (e.g., NEXUS_DATABASE_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			Issuer:          v.GetString("jwt.issuer"),
			Audience:        v.GetString("jwt.audience"),
			AllowUserHeader: v.GetBool("jwt.allow_user_header"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			MaxUploadSize:     v.GetInt64("storage.max_upload_size"),
		},
		Vision: VisionConfig{
			APIKey:      v.GetString("vision.api_key"),
			APIKeyFile:  v.GetString("vision.api_key_file"),
			Model:       v.GetString("vision.model"),
			Timeout:     v.GetDuration("vision.timeout"),
			Temperature: v.GetFloat64("vision.temperature"),
			MaxRetries:  v.GetInt("vision.max_retries"),
		},
		Connectors: ConnectorsConfig{
			RedirectURL:       v.GetString("connectors.redirect_url"),
			EncryptionKey:     v.GetString("connectors.encryption_key"),
			EncryptionKeyFile: v.GetString("connectors.encryption_key_file"),
			StateTTL:          v.GetDuration("connectors.state_ttl"),
			GoogleDrive:       loadProvider(v, "connectors.google_drive"),
			Gmail:             loadProvider(v, "connectors.gmail"),
		},
		Matching: MatchingConfig{
			WeightVendor:         v.GetFloat64("matching.weight_vendor"),
			WeightPONumber:       v.GetFloat64("matching.weight_po_number"),
			WeightAmount:         v.GetFloat64("matching.weight_amount"),
			WeightDate:           v.GetFloat64("matching.weight_date"),
			WeightLineItems:      v.GetFloat64("matching.weight_line_items"),
			AmountTolerance:      v.GetFloat64("matching.amount_tolerance"),
			QuantityTolerance:    v.GetFloat64("matching.quantity_tolerance"),
			AutoApproveThreshold: v.GetInt("matching.auto_approve_threshold"),
			ReviewThreshold:      v.GetInt("matching.review_threshold"),
			CandidateLimit:       v.GetInt("matching.candidate_limit"),
			AutoMatchBatchSize:   v.GetInt("matching.auto_match_batch_size"),
		},
		Cache: CacheConfig{
			Enabled:   v.GetBool("cache.enabled"),
			TTL:       v.GetDuration("cache.ttl"),
			KeyPrefix: v.GetString("cache.key_prefix"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			AutoMatchCron: v.GetString("scheduler.auto_match_cron"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeEndpoint: v.GetString("telemetry.pyroscope_endpoint"),
		},
	}

	// Matching weights are all-or-nothing: a partial override would no longer sum to 1
	cfg.Matching.applyWeightDefaults(v.IsSet("matching.weight_vendor") || v.IsSet("matching.weight_po_number") ||
		v.IsSet("matching.weight_amount") || v.IsSet("matching.weight_date") || v.IsSet("matching.weight_line_items"))

	applyDefaults(cfg)

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) OAuthProviderConfig {
	return OAuthProviderConfig{
		ClientID:     v.GetString(prefix + ".client_id"),
		ClientSecret: v.GetString(prefix + ".client_secret"),
		AuthURL:      v.GetString(prefix + ".auth_url"),
		TokenURL:     v.GetString(prefix + ".token_url"),
		Scopes:       v.GetStringSlice(prefix + ".scopes"),
	}
}

func (m *MatchingConfig) applyWeightDefaults(overridden bool) {
	if overridden {
		return
	}
	w := matching.DefaultWeights()
	m.WeightVendor = w.Vendor.InexactFloat64()
	m.WeightPONumber = w.PONumber.InexactFloat64()
	m.WeightAmount = w.Amount.InexactFloat64()
	m.WeightDate = w.Date.InexactFloat64()
	m.WeightLineItems = w.LineItems.InexactFloat64()
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "nexus-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "nexus"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// extraction requests wait on the vision model
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 25 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// CORS origins get no wildcard fallback; they must be configured explicitly
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-User-ID"}
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "nexus-documents"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 20 << 20
	}
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = "gemini-2.5-flash"
	}
	if cfg.Vision.Timeout == 0 {
		cfg.Vision.Timeout = 60 * time.Second
	}
	if cfg.Vision.MaxRetries == 0 {
		cfg.Vision.MaxRetries = 2
	}
	if cfg.Connectors.StateTTL == 0 {
		cfg.Connectors.StateTTL = 10 * time.Minute
	}
	applyGoogleDefaults(&cfg.Connectors.GoogleDrive, []string{"https://www.googleapis.com/auth/drive.readonly"})
	applyGoogleDefaults(&cfg.Connectors.Gmail, []string{"https://www.googleapis.com/auth/gmail.readonly"})
	if cfg.Matching.AmountTolerance == 0 {
		cfg.Matching.AmountTolerance = 0.01
	}
	if cfg.Matching.AutoApproveThreshold == 0 {
		cfg.Matching.AutoApproveThreshold = 90
	}
	if cfg.Matching.ReviewThreshold == 0 {
		cfg.Matching.ReviewThreshold = 70
	}
	if cfg.Matching.CandidateLimit == 0 {
		cfg.Matching.CandidateLimit = 5
	}
	if cfg.Matching.AutoMatchBatchSize == 0 {
		cfg.Matching.AutoMatchBatchSize = 200
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 7 * 24 * time.Hour
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "nexus:extraction:"
	}
	if cfg.Scheduler.AutoMatchCron == "" {
		cfg.Scheduler.AutoMatchCron = "0 */6 * * *"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeEndpoint == "" {
		cfg.Telemetry.PyroscopeEndpoint = "http://localhost:4040"
	}
}

func applyGoogleDefaults(p *OAuthProviderConfig, scopes []string) {
	if p.AuthURL == "" {
		p.AuthURL = "https://accounts.google.com/o/oauth2/auth"
	}
	if p.TokenURL == "" {
		p.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if len(p.Scopes) == 0 {
		p.Scopes = scopes
	}
}

// resolveSecrets reads *_file settings into their inline counterparts
func (c *Config) resolveSecrets() error {
	if c.Vision.APIKeyFile != "" || c.Vision.APIKey != "" {
		key, err := loadSecret(secretSource{Name: "vision.api_key", Value: c.Vision.APIKey, File: c.Vision.APIKeyFile})
		if err != nil {
			return err
		}
		c.Vision.APIKey = key
	}
	if c.Connectors.EncryptionKeyFile != "" || c.Connectors.EncryptionKey != "" {
		key, err := loadSecret(secretSource{
			Name: "connectors.encryption_key", Value: c.Connectors.EncryptionKey, File: c.Connectors.EncryptionKeyFile,
		})
		if err != nil {
			return err
		}
		c.Connectors.EncryptionKey = key
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if err := c.Matching.ComparisonConfig().Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.JWT.AllowUserHeader {
			return fmt.Errorf("jwt.allow_user_header must be false in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Connectors.EncryptionKey == "" {
			return fmt.Errorf("connectors.encryption_key is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
