package config

// Environment variables read by parseEnv.
const (
	EnvAccessSecret   = "ACCESS_SECRET"
	EnvResourceSecret = "URL_SECRET"
	EnvAdminUsername  = "SUPER_ADMIN_USERNAME"
	EnvAdminPassword  = "SUPER_ADMIN_PASSWORD"
	EnvDatabaseDSN    = "DB_URI"
	EnvLogLevel       = "LOG_LEVEL"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvPublicBaseURL  = "PUBLIC_BASE_URL"
	EnvRefreshStore   = "REFRESH_STORE"
)

// parseEnv overrides config with the non-empty environment variables above.
// lookupEnv is os.LookupEnv in production.
func parseEnv(config *Config, lookupEnv func(string) (string, bool)) {
	bindings := []struct {
		name string
		dst  *string
	}{
		{EnvAccessSecret, &config.AccessSecret},
		{EnvResourceSecret, &config.ResourceSecret},
		{EnvAdminUsername, &config.AdminUsername},
		{EnvAdminPassword, &config.AdminPassword},
		{EnvDatabaseDSN, &config.DatabaseDSN},
		{EnvLogLevel, &config.LogLevel},
		{EnvRedisAddr, &config.RedisAddr},
		{EnvRedisPassword, &config.RedisPassword},
		{EnvPublicBaseURL, &config.PublicBaseURL},
		{EnvRefreshStore, &config.RefreshStore},
	}

	for _, b := range bindings {
		if v, ok := lookupEnv(b.name); ok && v != "" {
			*b.dst = v
		}
	}
}
