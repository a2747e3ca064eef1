package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REGISTRY_DRIVER", "")
	t.Setenv("ACCESS_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected memory store by default, got %q", cfg.Store.Driver)
	}
	if cfg.Registry.Driver != DriverMemory {
		t.Errorf("expected memory registry by default, got %q", cfg.Registry.Driver)
	}
	if cfg.Auth.AccessSecret != "" {
		t.Error("access secret must not have a default")
	}
	if cfg.Suggest.MaxResults != 5 {
		t.Errorf("expected 5 max suggestions, got %d", cfg.Suggest.MaxResults)
	}
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres without DSN")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "firestore")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestKafkaBrokersList(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
}

func TestJWTSecretHasNoDefault(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Errorf("jwt secret must not have a default, got %q", cfg.Auth.JWTSecret)
	}
}
