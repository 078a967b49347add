package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "TUNEWAVE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "TUNEWAVE_DB_DSN"
	EnvDBHost = "TUNEWAVE_DB_HOST"
	EnvDBUser = "TUNEWAVE_DB_USER"
	EnvDBName = "TUNEWAVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
