package config

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "STOCKBILL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Canonical environment variable names, shared with tests and tooling.
const (
	EnvAppEnv     = "STOCKBILL_APP_ENV"
	EnvPort       = "STOCKBILL_APP_PORT"
	EnvDBDSN      = "STOCKBILL_DB_DSN"
	EnvDBHost     = "STOCKBILL_DB_HOST"
	EnvDBUser     = "STOCKBILL_DB_USER"
	EnvDBName     = "STOCKBILL_DB_NAME"
	EnvRedisURL   = "STOCKBILL_REDIS_URL"
	EnvJWTSecret  = "STOCKBILL_JWT_SECRET"
	EnvJWTIssuer  = "STOCKBILL_JWT_ISSUER"
	EnvJWTExpMins = "STOCKBILL_JWT_EXPIRATION_MINUTES"
)
