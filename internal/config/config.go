package config // package config loads application configuration from environment variables

import (
    "os"   // os provides access to environment variables
    "time" // time parses durations such as SESSION_TTL

    "github.com/joho/godotenv"       // godotenv loads a local .env file when present
    "github.com/labstack/gommon/log" // log reports configuration errors and halts execution
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Backend service URLs are the only collaborators
// the front end needs; the database is optional and only stores local
// payment confirmation records.
type Config struct {
    Env      string // application environment (e.g. "dev", "prod")
    Port     string // HTTP port to listen on
    LogLevel string // debug, info, warn or error

    SessionSecret string        // secret used to sign session cookies
    SessionTTL    time.Duration // lifetime of a booking session
    SessionCookie string        // cookie name carrying the signed session token
    SessionStore  string        // "redis" or "memory"

    RoomsURL              string        // base URL of the Rooms Service
    BookingURL            string        // base URL of the Booking Service
    GuestURL              string        // base URL of the Guest Service
    PaymentIntentURL      string        // processor-mediated intent creation endpoint
    PaymentProcessorURL   string        // processor API used to confirm intents
    PaymentPublishableKey string        // publishable key sent on confirmation
    PaymentCurrency       string        // ISO currency code for intents
    ServiceTimeout        time.Duration // upper bound for each backend call

    DateShiftDays   int  // days added to check-in/out before booking submission
    StrictRoomTypes bool // reject room labels outside the known categories

    DBUser string // database username (optional)
    DBPass string // database password (optional)
    DBHost string // database host; empty disables confirmation records
    DBPort string // database port number
    DBName string // database name

    RabbitURL string // AMQP broker URL; empty disables event publishing
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    _ = godotenv.Load() // a missing .env is not an error

    return Config{
        Env:      must("APP_ENV"),
        Port:     must("APP_PORT"),
        LogLevel: envStr("LOG_LEVEL", "info"),

        SessionSecret: must("SESSION_SECRET"),
        SessionTTL:    envDur("SESSION_TTL", 24*time.Hour),
        SessionCookie: envStr("SESSION_COOKIE", "booking_session"),
        SessionStore:  envStr("SESSION_STORE", "redis"),

        RoomsURL:              must("ROOMS_URL"),
        BookingURL:            must("BOOKING_URL"),
        GuestURL:              must("GUEST_URL"),
        PaymentIntentURL:      must("PAYMENT_INTENT_URL"),
        PaymentProcessorURL:   envStr("PAYMENT_PROCESSOR_URL", "https://api.stripe.com"),
        PaymentPublishableKey: must("PAYMENT_PUBLISHABLE_KEY"),
        PaymentCurrency:       envStr("PAYMENT_CURRENCY", "SGD"),
        ServiceTimeout:        envDur("SERVICE_TIMEOUT", 10*time.Second),

        DateShiftDays:   envInt("BOOKING_DATE_SHIFT_DAYS", 1),
        StrictRoomTypes: envBool("ROOM_TYPE_STRICT", true),

        DBUser: os.Getenv("DB_USER"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: os.Getenv("DB_HOST"),
        DBPort: envStr("DB_PORT", "3306"),
        DBName: os.Getenv("DB_NAME"),

        RabbitURL: rabbitURL(),
    }
}

// DatabaseEnabled reports whether enough settings exist to open MySQL.
func (c Config) DatabaseEnabled() bool {
    return c.DBHost != "" && c.DBUser != "" && c.DBName != ""
}

// rabbitURL honours both RABBITMQ_URL and the older AMQP_URL name.
func rabbitURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
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

// Worker holds the settings of the booking.confirmed consumer process.  It
// needs none of the web front end's required variables.
type Worker struct {
    RabbitURL string // AMQP broker URL
    LogDir    string // directory receiving booking.log
    LogLevel  string
}

// LoadWorker reads the consumer's configuration.
func LoadWorker() Worker {
    _ = godotenv.Load()
    return Worker{
        RabbitURL: rabbitURL(),
        LogDir:    envStr("BOOKING_LOG_DIR", "logs"),
        LogLevel:  envStr("LOG_LEVEL", "info"),
    }
}

// ParseLogLevel maps LOG_LEVEL onto a gommon level; unknown values mean INFO.
func ParseLogLevel(s string) log.Lvl {
    switch s {
    case "debug":
        return log.DEBUG
    case "warn":
        return log.WARN
    case "error":
        return log.ERROR
    case "off":
        return log.OFF
    }
    return log.INFO
}
