// Package config materializes viper settings into a typed Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the API server and its commands.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Bank     string
	Auth     AuthConfig
	Uploads  UploadConfig
	MinIO    MinIOConfig
	Events   EventsConfig
	Feedback FeedbackConfig
}

type ServerConfig struct {
	Port      string
	ClientURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns a lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type UploadConfig struct {
	Driver          string
	Dir             string
	BaseURL         string
	CleanupInterval time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type FeedbackConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

const (
	BankPostgres = "postgres"
	BankMongo    = "mongo"

	UploadLocal = "local"
	UploadMinIO = "minio"

	FeedbackNone      = "none"
	FeedbackAnthropic = "anthropic"
	FeedbackOpenAI    = "openai"
	FeedbackMock      = "mock"
)

// Load reads every known key from v. Keys that were never bound fall back to
// the defaults below.
func Load(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port:      v.GetString("port"),
			ClientURL: v.GetString("client-url"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db-host"),
			Port:     v.GetString("db-port"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			Name:     v.GetString("db-name"),
			SSLMode:  v.GetString("db-sslmode"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo-uri"),
			Database: v.GetString("mongo-database"),
		},
		Bank: strings.ToLower(v.GetString("question-bank")),
		Auth: AuthConfig{
			JWTSecret: v.GetString("jwt-secret"),
			TokenTTL:  v.GetDuration("token-ttl"),
		},
		Uploads: UploadConfig{
			Driver:          strings.ToLower(v.GetString("upload-driver")),
			Dir:             v.GetString("upload-dir"),
			BaseURL:         strings.TrimSuffix(v.GetString("upload-base-url"), "/"),
			CleanupInterval: v.GetDuration("cleanup-interval"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("minio-endpoint"),
			AccessKey: v.GetString("minio-access-key"),
			SecretKey: v.GetString("minio-secret-key"),
			Bucket:    v.GetString("minio-bucket"),
			UseSSL:    v.GetBool("minio-use-ssl"),
			Region:    v.GetString("minio-region"),
		},
		Events: EventsConfig{
			AMQPURL:  v.GetString("amqp-url"),
			Exchange: v.GetString("amqp-exchange"),
		},
		Feedback: FeedbackConfig{
			Provider: strings.ToLower(v.GetString("feedback-provider")),
			Model:    v.GetString("feedback-model"),
			APIKey:   feedbackKey(v),
			BaseURL:  v.GetString("feedback-base-url"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db-host", "localhost")
	v.SetDefault("db-port", "5432")
	v.SetDefault("db-user", "interviewprep")
	v.SetDefault("db-password", "interviewprep")
	v.SetDefault("db-name", "interviewprep")
	v.SetDefault("db-sslmode", "disable")
	v.SetDefault("mongo-uri", "mongodb://localhost:27017")
	v.SetDefault("mongo-database", "interviewprep")
	v.SetDefault("question-bank", BankPostgres)
	v.SetDefault("token-ttl", 7*24*time.Hour)
	v.SetDefault("upload-driver", UploadLocal)
	v.SetDefault("upload-dir", "uploads")
	v.SetDefault("upload-base-url", "/uploads")
	v.SetDefault("cleanup-interval", time.Hour)
	v.SetDefault("minio-bucket", "resumes")
	v.SetDefault("minio-region", "us-east-1")
	v.SetDefault("amqp-exchange", "interviewprep.events")
	v.SetDefault("feedback-provider", FeedbackNone)
}

// feedbackKey falls back to the provider's conventional API key variable.
func feedbackKey(v *viper.Viper) string {
	if k := v.GetString("feedback-api-key"); k != "" {
		return k
	}
	switch strings.ToLower(v.GetString("feedback-provider")) {
	case FeedbackAnthropic:
		return v.GetString("anthropic-api-key")
	case FeedbackOpenAI:
		return v.GetString("openai-api-key")
	}
	return ""
}

// Validate reports settings that would make the server fail later.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt-secret is required (set JWT_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token-ttl must be positive")
	}
	switch c.Bank {
	case BankPostgres, BankMongo:
	default:
		return fmt.Errorf("unknown question-bank %q (want postgres or mongo)", c.Bank)
	}
	switch c.Uploads.Driver {
	case UploadLocal:
	case UploadMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("minio-endpoint is required for upload-driver=minio")
		}
	default:
		return fmt.Errorf("unknown upload-driver %q (want local or minio)", c.Uploads.Driver)
	}
	switch c.Feedback.Provider {
	case FeedbackNone, FeedbackMock:
	case FeedbackAnthropic, FeedbackOpenAI:
		if c.Feedback.APIKey == "" && c.Feedback.BaseURL == "" {
			return fmt.Errorf("feedback-api-key is required for feedback-provider=%s", c.Feedback.Provider)
		}
	default:
		return fmt.Errorf("unknown feedback-provider %q", c.Feedback.Provider)
	}
	return nil
}
