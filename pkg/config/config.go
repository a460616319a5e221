package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	PostgresConnStr string `envconfig:"POSTGRES_CONN_STR"`
	MongoURI        string `envconfig:"MONGO_URI"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"ratewell"`

	JWTSecret               string `envconfig:"JWT_SECRET" default:"supersecretjwtkey"`
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`

	// Realtime tuning. The defaults are load-bearing for client behavior:
	// mailboxes keep the 50 most recent notifications and streaming
	// connections heartbeat every 25 seconds.
	MailboxSize       int           `envconfig:"MAILBOX_SIZE" default:"50"`
	KeepaliveInterval time.Duration `envconfig:"KEEPALIVE_INTERVAL" default:"25s"`
}

// Load reads configuration from the environment, after loading a local .env
// file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
