package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string
	LogLevel string

	Database     DatabaseConfigs
	ApiServer    APIServerConfigs
	Redis        RedisConfigs
	Kafka        KafkaConfigs
	Campaign     CampaignConfigs
	Verification VerificationConfigs
}

type DatabaseConfigs struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// DSN overrides the connection string built from other fields.
	DSN string
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host,
			d.Port,
			d.User,
			d.Password,
			d.Database,
		)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
	}
}

type APIServerConfigs struct {
	Host         string
	Port         string
	MaxLimit     int
	DefaultLimit int

	// AuthSecret signs the user id forwarded by the gateway. Empty trusts
	// the header as is.
	AuthSecret string
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr    string
	Topic   string
	GroupID string
}

type CampaignConfigs struct {
	// ReferralGraceWindow is how long after a campaign ends referral credits
	// for entrants who signed up before the end are still accepted. Zero
	// disables the window.
	ReferralGraceWindow time.Duration

	// GrandfatherWindow bounds how old an action may be when it is recorded
	// against a config version that is no longer current.
	GrandfatherWindow time.Duration

	LifecycleInterval time.Duration
	OutboxInterval    time.Duration
	OutboxBatchSize   int
}

type VerificationConfigs struct {
	Secret        string
	VisitTokenTTL time.Duration

	// ProofTTL is how long a proof signed by an upstream verifier stays
	// acceptable after it was issued.
	ProofTTL    time.Duration
	AllowedSkew time.Duration
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "giveaway.db",
		},
		ApiServer: APIServerConfigs{
			Host:         "localhost",
			Port:         "8080",
			MaxLimit:     100,
			DefaultLimit: 20,
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{
			Addr:    "localhost:9092",
			Topic:   "giveaway.ledger",
			GroupID: "giveaway-projector",
		},
		Campaign: CampaignConfigs{
			ReferralGraceWindow: 5 * time.Minute,
			GrandfatherWindow:   24 * time.Hour,
			LifecycleInterval:   10 * time.Second,
			OutboxInterval:      2 * time.Second,
			OutboxBatchSize:     100,
		},
		Verification: VerificationConfigs{
			VisitTokenTTL: time.Hour,
			ProofTTL:      24 * time.Hour,
			AllowedSkew:   time.Minute,
		},
	}
}

// Load reads the toml file at path on top of the defaults, then applies
// environment overrides. An empty path only applies the overrides.
// Durations are written as strings such as "5m" or "1h30m".
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnv(cfg *Configs) error {
	setString(&cfg.Env, "ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Database, "DB_DATABASE")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.ApiServer.Host, "API_HOST")
	setString(&cfg.ApiServer.Port, "API_PORT")
	setString(&cfg.ApiServer.AuthSecret, "API_AUTH_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDRESS")
	setString(&cfg.Kafka.Addr, "KAFKA_ADDRESS")
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Verification.Secret, "VERIFICATION_SECRET")

	durations := map[string]*time.Duration{
		"REFERRAL_GRACE_WINDOW":  &cfg.Campaign.ReferralGraceWindow,
		"GRANDFATHER_WINDOW":     &cfg.Campaign.GrandfatherWindow,
		"LIFECYCLE_INTERVAL":     &cfg.Campaign.LifecycleInterval,
		"OUTBOX_INTERVAL":        &cfg.Campaign.OutboxInterval,
		"VERIFICATION_VISIT_TTL": &cfg.Verification.VisitTokenTTL,
		"VERIFICATION_PROOF_TTL": &cfg.Verification.ProofTTL,
		"VERIFICATION_SKEW":      &cfg.Verification.AllowedSkew,
	}
	for key, dst := range durations {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration in %s: %w", key, err)
	}

	*dst = d
	return nil
}
