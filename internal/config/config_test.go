package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(viper.New())

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Bank != BankPostgres {
		t.Errorf("Bank = %q, want %q", cfg.Bank, BankPostgres)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.Uploads.BaseURL != "/uploads" {
		t.Errorf("BaseURL = %q, want /uploads", cfg.Uploads.BaseURL)
	}
	if !strings.Contains(cfg.Database.DSN(), "dbname=interviewprep") {
		t.Errorf("DSN() = %q, missing dbname", cfg.Database.DSN())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr string
	}{
		{"missing secret", nil, "jwt-secret"},
		{"ok", map[string]any{"jwt-secret": "s"}, ""},
		{"bad bank", map[string]any{"jwt-secret": "s", "question-bank": "redis"}, "question-bank"},
		{"minio without endpoint", map[string]any{"jwt-secret": "s", "upload-driver": "minio"}, "minio-endpoint"},
		{"openai without key", map[string]any{"jwt-secret": "s", "feedback-provider": "openai"}, "feedback-api-key"},
		{"openai key fallback", map[string]any{"jwt-secret": "s", "feedback-provider": "openai", "openai-api-key": "k"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			err := Load(v).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
