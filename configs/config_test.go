package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	c, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if c.Store.Retention != 24*time.Hour {
		t.Errorf("unexpected retention: want %v, got %v", 24*time.Hour, c.Store.Retention)
	}
	if c.Store.MessageDriver != "memory" {
		t.Errorf("message driver should follow store driver, got %q", c.Store.MessageDriver)
	}
	if c.App.BodyLimit != 15*1024*1024 {
		t.Errorf("unexpected body limit: %d", c.App.BodyLimit)
	}
	if c.Auth.TrustClientIdentity {
		t.Error("client supplied identity must not be trusted by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "firebase")
	t.Setenv("AUTH_FIREBASE_PROJECT_ID", "studlyf-test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORE_MESSAGE_DRIVER", "mongo")
	t.Setenv("STORE_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("STORE_RETENTION", "1h")
	t.Setenv("EVENTS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REALTIME_TRUST_CLIENT_UID", "true")

	c, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if c.Store.MessageDriver != "mongo" {
		t.Errorf("unexpected message driver: %q", c.Store.MessageDriver)
	}
	if c.Store.Retention != time.Hour {
		t.Errorf("unexpected retention: %v", c.Store.Retention)
	}
	if len(c.Events.KafkaBrokers) != 2 {
		t.Errorf("unexpected brokers: %v", c.Events.KafkaBrokers)
	}
	if !c.Auth.TrustClientIdentity {
		t.Error("legacy trust flag was not read")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"STORE_DRIVER": "memory"}},
		{"missing database url", map[string]string{"JWT_SECRET": "s"}},
		{"unknown assets driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "ASSETS_DRIVER": "ftp"}},
		{"s3 without bucket", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "ASSETS_DRIVER": "s3"}},
		{"zero ping interval", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "REALTIME_PING_INTERVAL": "0s"}},
		{"negative write timeout", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "REALTIME_WRITE_TIMEOUT": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
