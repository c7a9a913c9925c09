package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SALONFLOW"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv    = "SALONFLOW_APP_ENV"
	EnvPort      = "SALONFLOW_APP_PORT"
	EnvDBDSN     = "SALONFLOW_DB_DSN"
	EnvDBHost    = "SALONFLOW_DB_HOST"
	EnvDBUser    = "SALONFLOW_DB_USER"
	EnvDBName    = "SALONFLOW_DB_NAME"
	EnvRedisURL  = "SALONFLOW_REDIS_URL"
	EnvJWTSecret = "SALONFLOW_JWT_SECRET"
	EnvJWTIssuer = "SALONFLOW_JWT_ISSUER"
	EnvJWTExp    = "SALONFLOW_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
