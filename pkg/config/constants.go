package config

// EnvPrefix namespaces every storefront environment variable.
const EnvPrefix = "storefront"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
