package config

type Config interface {
	EnvConfig
	AuthConfig
	SecurityConfig
}

type mainConfig struct {
	EnvVars
	Auth
	Security
}

func New() Config {
	return mainConfig{}
}
