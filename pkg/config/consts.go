package config

// EnvPrefix namespaces every environment variable consumed by the app.
const EnvPrefix = "RESTO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "RESTO_DB_DSN"
	EnvDBHost = "RESTO_DB_HOST"
	EnvDBUser = "RESTO_DB_USER"
	EnvDBName = "RESTO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
