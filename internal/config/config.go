package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	ImgBBKey      string
	TokenTTL      time.Duration
	StoreTimeout  time.Duration
	UploadTimeout time.Duration
	RateLimit     RateLimit
}

// RateLimit is a fixed window applied per client IP across the API,
// mirroring the conventional 100 requests per 15 minutes.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

func Load() Config {
	addr := envString("MINGLE_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":5000"
		}
	}
	return Config{
		Addr:          addr,
		MongoURI:      envString("MINGLE_MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       envString("MINGLE_MONGO_DB", "mingle"),
		JWTSecret:     envString("MINGLE_JWT_SECRET", "dev-jwt-secret"),
		ImgBBKey:      envString("MINGLE_IMGBB_KEY", ""),
		TokenTTL:      envDuration("MINGLE_TOKEN_TTL", 7*24*time.Hour),
		StoreTimeout:  envDuration("MINGLE_STORE_TIMEOUT", 5*time.Second),
		UploadTimeout: envDuration("MINGLE_UPLOAD_TIMEOUT", 30*time.Second),
		RateLimit: RateLimit{
			Requests: envInt("MINGLE_RL_REQUESTS", 100),
			Window:   envDuration("MINGLE_RL_WINDOW", 15*time.Minute),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
