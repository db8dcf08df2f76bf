package config

// EnvPrefix is passed to envconfig; every field carries an explicit tag so it only matters for error messages.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	CartStorageMemory = "memory"
	CartStorageRedis  = "redis"
	CartStorageDB     = "db"
)

const (
	OrdersTransportHTTP     = "http"
	OrdersTransportRabbitMQ = "rabbitmq"
	OrdersTransportPubSub   = "pubsub"
)

const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvLogFormat       = "STOREFRONT_LOG_FORMAT"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvDBHost          = "STOREFRONT_DB_HOST"
	EnvDBUser          = "STOREFRONT_DB_USER"
	EnvDBName          = "STOREFRONT_DB_NAME"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvRedisAddr       = "STOREFRONT_REDIS_ADDR"
	EnvCORSOrigins     = "STOREFRONT_CORS_ALLOWED_ORIGINS"
	EnvJWTSecret       = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer       = "STOREFRONT_JWT_ISSUER"
	EnvCartStorage     = "STOREFRONT_CART_STORAGE"
	EnvCartCurrency    = "STOREFRONT_CART_CURRENCY"
	EnvOrdersTransport = "STOREFRONT_ORDERS_TRANSPORT"
	EnvOrdersSubmitURL = "STOREFRONT_ORDERS_SUBMIT_URL"
	EnvRabbitMQURL     = "STOREFRONT_RABBITMQ_URL"
	EnvGCPProjectID    = "STOREFRONT_GCP_PROJECT_ID"
	EnvUseSQLite       = "STOREFRONT_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
