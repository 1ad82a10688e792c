package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Name         string        `mapstructure:"name"`
	Port         int           `mapstructure:"port"`
	BodyLimit    int           `mapstructure:"body_limit"`
	ProfileLimit int           `mapstructure:"profile_limit"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type AuthConfig struct {
	Provider            string `mapstructure:"provider"`
	JWTSecret           string `mapstructure:"jwt_secret"`
	FirebaseProjectID   string `mapstructure:"firebase_project_id"`
	TrustClientIdentity bool   `mapstructure:"trust_client_uid"`
}

type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	MessageDriver string        `mapstructure:"message_driver"`
	DatabaseURL   string        `mapstructure:"database_url"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
	Retention     time.Duration `mapstructure:"retention"`
	ReapSchedule  string        `mapstructure:"reap_schedule"`
}

type AssetsConfig struct {
	Driver        string `mapstructure:"driver"`
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	CloudinaryURL string `mapstructure:"cloudinary_url"`
	Folder        string `mapstructure:"folder"`
	CertFolder    string `mapstructure:"certificate_folder"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3Endpoint    string `mapstructure:"s3_endpoint"`
}

type RealtimeConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Channel       string        `mapstructure:"channel"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	PingInterval  time.Duration `mapstructure:"ping_interval"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

type EventsConfig struct {
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	Topic        string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Store    StoreConfig    `mapstructure:"store"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

var defaults = map[string]any{
	"app.name":          "Studlyf Network",
	"app.port":          8080,
	"app.body_limit":    15 * 1024 * 1024,
	"app.profile_limit": 100 * 1024,
	"app.read_timeout":  15 * time.Second,
	"app.write_timeout": 15 * time.Second,

	"auth.provider":            "jwt",
	"auth.jwt_secret":          "",
	"auth.firebase_project_id": "",
	"auth.trust_client_uid":    false,

	"store.driver":         "postgres",
	"store.message_driver": "",
	"store.database_url":   "",
	"store.mongo_uri":      "",
	"store.mongo_database": "studlyf",
	"store.retention":      24 * time.Hour,
	"store.reap_schedule":  "*/5 * * * *",

	"assets.driver":             "local",
	"assets.local_dir":          "uploads",
	"assets.public_base_url":    "/uploads",
	"assets.cloudinary_url":     "",
	"assets.folder":             "studlyf_messages",
	"assets.certificate_folder": "studlyf_certificates",
	"assets.s3_bucket":          "",
	"assets.s3_region":          "",
	"assets.s3_endpoint":        "",

	"realtime.redis_addr":     "",
	"realtime.redis_password": "",
	"realtime.redis_db":       0,
	"realtime.channel":        "studlyf:realtime",
	"realtime.send_buffer":    64,
	"realtime.ping_interval":  30 * time.Second,
	"realtime.write_timeout":  10 * time.Second,

	"events.kafka_brokers": []string{},
	"events.topic":         "studlyf.events",

	"log.level":       "info",
	"log.development": false,
}

// Load reads .env, an optional CONFIG_FILE and the environment. Keys map to
// variables by upper-casing and replacing dots, so store.database_url is
// STORE_DATABASE_URL.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy names from the single-service deployment.
	_ = v.BindEnv("store.database_url", "STORE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("assets.cloudinary_url", "ASSETS_CLOUDINARY_URL", "CLOUDINARY_URL")
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")
	_ = v.BindEnv("realtime.redis_addr", "REALTIME_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("auth.trust_client_uid", "AUTH_TRUST_CLIENT_UID", "REALTIME_TRUST_CLIENT_UID")

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Comma separated lists arrive from the environment as one string.
	if len(c.Events.KafkaBrokers) == 1 && strings.Contains(c.Events.KafkaBrokers[0], ",") {
		c.Events.KafkaBrokers = strings.Split(c.Events.KafkaBrokers[0], ",")
	}
	if c.Store.MessageDriver == "" {
		c.Store.MessageDriver = c.Store.Driver
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Auth.Provider {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required when auth.provider is jwt")
		}
	case "firebase":
		if c.Auth.FirebaseProjectID == "" {
			return fmt.Errorf("auth.firebase_project_id is required when auth.provider is firebase")
		}
	default:
		return fmt.Errorf("unknown auth.provider %q", c.Auth.Provider)
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	switch c.Store.MessageDriver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for postgres messages")
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri is required for mongo messages")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.message_driver %q", c.Store.MessageDriver)
	}
	if c.Store.Retention <= 0 {
		return fmt.Errorf("store.retention must be positive")
	}

	switch c.Assets.Driver {
	case "local":
	case "cloudinary":
		if c.Assets.CloudinaryURL == "" {
			return fmt.Errorf("assets.cloudinary_url is required for the cloudinary driver")
		}
	case "s3":
		if c.Assets.S3Bucket == "" {
			return fmt.Errorf("assets.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown assets.driver %q", c.Assets.Driver)
	}

	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("realtime.send_buffer must be positive")
	}
	if c.Realtime.PingInterval <= 0 {
		return fmt.Errorf("realtime.ping_interval must be positive")
	}
	if c.Realtime.WriteTimeout <= 0 {
		return fmt.Errorf("realtime.write_timeout must be positive")
	}
	return nil
}
