package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Token signing secrets come in two independent
// families ("signature levels"): the user pair signs tokens for standard
// accounts, the system pair signs tokens for admin and super-admin accounts.
// Keeping the families separate means a leaked user key can never be used to
// forge an elevated-role token.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AccessUserSecret    string // signs access tokens for standard users
	RefreshUserSecret   string // signs refresh tokens for standard users
	AccessSystemSecret  string // signs access tokens for admin roles
	RefreshSystemSecret string // signs refresh tokens for admin roles

	AccessTTLMin   int // access token time-to-live in minutes
	RefreshTTLDays int // refresh token time-to-live in days
	OtpTTLMin      int // one-time code time-to-live in minutes
	BcryptCost     int // bcrypt cost for password and OTP hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Signing secrets are
// required here rather than checked per request: an absent secret must halt
// the process, never fall through to signing with an empty key.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		AccessUserSecret:    must("ACCESS_USER_TOKEN_SECRET"),
		RefreshUserSecret:   must("REFRESH_USER_TOKEN_SECRET"),
		AccessSystemSecret:  must("ACCESS_SYSTEM_TOKEN_SECRET"),
		RefreshSystemSecret: must("REFRESH_SYSTEM_TOKEN_SECRET"),

		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		OtpTTLMin:      mustInt("OTP_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
