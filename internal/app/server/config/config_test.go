package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"DATABASE_URI": "postgres://localhost/lunasync"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, EnvLocal, cfg.Env)
				assert.Equal(t, ":8080", cfg.Server.RunAddress)
				assert.Equal(t, "migrations", cfg.DB.Migrations)
				assert.Equal(t, "info", cfg.Logger.LogLevel)
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"DATABASE_URI":    "postgres://db/lunasync",
				"RUN_ADDRESS":     "0.0.0.0:9000",
				"APP_ENV":         "PROD",
				"MIGRATIONS_PATH": "/srv/migrations",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, EnvProd, cfg.Env)
				assert.Equal(t, "0.0.0.0:9000", cfg.Server.RunAddress)
				assert.Equal(t, "/srv/migrations", cfg.DB.Migrations)
				assert.Equal(t, "postgres://db/lunasync", cfg.DB.DatabaseURI)
			},
		},
		{
			name:    "missing database",
			env:     map[string]string{"DATABASE_URI": ""},
			wantErr: true,
		},
		{
			name:    "unknown env",
			env:     map[string]string{"DATABASE_URI": "postgres://db", "APP_ENV": "staging"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
