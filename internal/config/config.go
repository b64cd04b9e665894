package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses TTL values as durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for TTLs.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to verify and sign crew tokens
	AccessTTLMin int           // access token time-to-live in minutes (token minting)
	PlanPath     string        // path to the transport plan YAML (optional)
	SessionTTL   time.Duration // import session lifetime in redis
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),                        // environment (dev/test/prod)
		Port:         must("APP_PORT"),                       // port to bind the HTTP server
		DBUser:       must("DB_USER"),                        // database user
		DBPass:       os.Getenv("DB_PASS"),                   // database password (empty allowed)
		DBHost:       must("DB_HOST"),                        // database host
		DBPort:       must("DB_PORT"),                        // database port
		DBName:       must("DB_NAME"),                        // database name
		JWTSecret:    must("JWT_SECRET"),                     // secret for signing JWTs
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),        // TTL for minted tokens in minutes
		PlanPath:     os.Getenv("PLAN_PATH"),                 // transport plan file (empty = built-in defaults)
		SessionTTL:   envDur("IMPORT_SESSION_TTL", 2*time.Hour), // how long an unapplied import survives
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
