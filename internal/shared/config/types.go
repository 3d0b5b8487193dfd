// Package config defines the typed configuration structures shared across layers.
package config

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PasswordConfig holds password hashing settings.
type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// JWTConfig holds access token settings.
type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

// RegistrationTokenConfig holds settings for the signed public registration token.
// MaxAgeHours bounds signature validity and must match the invite expiry policy.
type RegistrationTokenConfig struct {
	Secret      string `mapstructure:"secret"`
	MaxAgeHours int    `mapstructure:"max_age_hours"`
}

// AuthConfig groups authentication settings.
type AuthConfig struct {
	Password          PasswordConfig          `mapstructure:"password"`
	JWT               JWTConfig               `mapstructure:"jwt"`
	RegistrationToken RegistrationTokenConfig `mapstructure:"registration_token"`
}

// EmailConfig holds SMTP settings and the base URL used in outgoing links.
type EmailConfig struct {
	SMTPHost        string `mapstructure:"smtp_host"`
	SMTPPort        int    `mapstructure:"smtp_port"`
	SMTPUser        string `mapstructure:"smtp_user"`
	SMTPPassword    string `mapstructure:"smtp_password"`
	FromAddress     string `mapstructure:"from_address"`
	FromName        string `mapstructure:"from_name"`
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

// AccessConfig holds permission resolution settings.
type AccessConfig struct {
	CacheTTLHours    int    `mapstructure:"cache_ttl_hours"`
	FallbackRoleCode string `mapstructure:"fallback_role_code"`
}

// OnboardingConfig holds onboarding workflow settings.
type OnboardingConfig struct {
	InviteExpiryHours int `mapstructure:"invite_expiry_hours"`
}
