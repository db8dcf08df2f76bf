package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	Orders       OrdersConfig
	RabbitMQ     RabbitMQConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cart.Storage {
	case CartStorageMemory:
	case CartStorageRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s or %s is required for redis storage", EnvRedisURL, EnvRedisAddr)
		}
	case CartStorageDB:
		if err := c.DB.ensureDSN(c.FeatureFlags.UseSQLite); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvCartStorage, c.Cart.Storage)
	}

	switch c.Orders.Transport {
	case OrdersTransportHTTP:
		if strings.TrimSpace(c.Orders.SubmitURL) == "" {
			return fmt.Errorf("%s is required for http transport", EnvOrdersSubmitURL)
		}
	case OrdersTransportRabbitMQ:
		if strings.TrimSpace(c.RabbitMQ.URL) == "" {
			return fmt.Errorf("%s is required for rabbitmq transport", EnvRabbitMQURL)
		}
	case OrdersTransportPubSub:
		if strings.TrimSpace(c.GCP.ProjectID) == "" {
			return fmt.Errorf("%s is required for pubsub transport", EnvGCPProjectID)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvOrdersTransport, c.Orders.Transport)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SQLite is filled from the feature flag so the client can pick a dialector.
	SQLite bool `ignored:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret        string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer        string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	Audience      string `envconfig:"STOREFRONT_JWT_AUDIENCE"`
	ExpirationMin int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMin <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMin) * time.Minute
}

type CartConfig struct {
	Storage       string        `envconfig:"STOREFRONT_CART_STORAGE" default:"redis"`
	KeyNamespace  string        `envconfig:"STOREFRONT_CART_KEY_NAMESPACE" default:"sf"`
	TTL           time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"0s"`
	Currency      string        `envconfig:"STOREFRONT_CART_CURRENCY" default:"DKK"`
	RepriceOnLoad bool          `envconfig:"STOREFRONT_CART_REPRICE_ON_LOAD" default:"true"`
}

type OrdersConfig struct {
	Transport string        `envconfig:"STOREFRONT_ORDERS_TRANSPORT" default:"http"`
	SubmitURL string        `envconfig:"STOREFRONT_ORDERS_SUBMIT_URL"`
	Timeout   time.Duration `envconfig:"STOREFRONT_ORDERS_TIMEOUT" default:"10s"`
}

type RabbitMQConfig struct {
	URL      string `envconfig:"STOREFRONT_RABBITMQ_URL"`
	Queue    string `envconfig:"STOREFRONT_RABBITMQ_QUEUE" default:"storefront_orders"`
	PoolSize int    `envconfig:"STOREFRONT_RABBITMQ_POOL_SIZE" default:"4"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"STOREFRONT_PUBSUB_ORDERS_TOPIC" default:"storefront-orders"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	db.SQLite = sqlite
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = "file:storefront.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
