package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOrigins []string

	FreeQuestionLimit    int
	PassMark             float64
	StrictTestResolution bool

	HandoffDriver string // sql|fs|redis
	HandoffPath   string
	HandoffTTL    time.Duration
	RedisAddr     string

	LogLevel  string
	LogPretty bool

	// client side
	APIBaseURL string
	APITimeout time.Duration
}

// FromEnv reads the environment, with an optional .env file in the working
// directory underneath it.
func FromEnv() Config {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	_ = v.ReadInConfig() // .env is optional

	mode := Mode(strings.ToLower(v.GetString("MODE")))
	if mode == "" {
		mode = ModeOffline
	}
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "file:certprep.db?_pragma=busy_timeout(5000)")
	v.SetDefault("AUTH_HMAC_SECRET", "dev-secret-change-me")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS_HASH", "")
	v.SetDefault("FREE_QUESTION_LIMIT", 10)
	v.SetDefault("PASS_MARK", 70)
	v.SetDefault("STRICT_TEST_RESOLUTION", false)
	v.SetDefault("HANDOFF_DRIVER", "sql")
	v.SetDefault("HANDOFF_PATH", "./data/handoffs")
	v.SetDefault("HANDOFF_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", mode == ModeOffline)
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", "15s")
	if mode == ModeOnline {
		v.SetDefault("CORS_ORIGINS", "https://certprep.mindengage.ai")
	} else {
		v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	}

	return Config{
		Mode:                 mode,
		HTTPAddr:             v.GetString("HTTP_ADDR"),
		DBDriver:             v.GetString("DB_DRIVER"),
		DBDSN:                v.GetString("DB_DSN"),
		AuthHMACSecret:       v.GetString("AUTH_HMAC_SECRET"),
		AdminUser:            v.GetString("ADMIN_USER"),
		AdminPassHash:        v.GetString("ADMIN_PASS_HASH"),
		CORSOrigins:          csv(v.GetString("CORS_ORIGINS")),
		FreeQuestionLimit:    positiveOr(v.GetInt("FREE_QUESTION_LIMIT"), 10),
		PassMark:             v.GetFloat64("PASS_MARK"),
		StrictTestResolution: v.GetBool("STRICT_TEST_RESOLUTION"),
		HandoffDriver:        strings.ToLower(v.GetString("HANDOFF_DRIVER")),
		HandoffPath:          v.GetString("HANDOFF_PATH"),
		HandoffTTL:           v.GetDuration("HANDOFF_TTL"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogPretty:            v.GetBool("LOG_PRETTY"),
		APIBaseURL:           v.GetString("API_BASE_URL"),
		APITimeout:           v.GetDuration("API_TIMEOUT"),
	}
}

func positiveOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func csv(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
