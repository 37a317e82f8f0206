package config

const (
	EnvPrefix = "ECOPOINTS"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "ECOPOINTS_APP_ENV"
	EnvDBDSN  = "ECOPOINTS_DB_DSN"
	EnvDBHost = "ECOPOINTS_DB_HOST"
	EnvDBUser = "ECOPOINTS_DB_USER"
	EnvDBName = "ECOPOINTS_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
