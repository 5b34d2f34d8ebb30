// Package config loads driftsql configuration from config files and the
// environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem all file access goes through; tests swap in a
// memory-backed one.
var AppFs = afero.NewOsFs()

// Config holds the application configuration.
type Config struct {
	SchemaPath    string
	MigrationsDir string
	Provider      string
	DatabaseURL   string
	Debug         bool
}

// Load reads configuration from .driftsql.yaml (current directory, home, or
// ~/.config/driftsql), DRIFTSQL_* environment variables and .env files.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".driftsql")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "driftsql"))

	viper.SetEnvPrefix("DRIFTSQL")
	viper.AutomaticEnv()

	viper.SetDefault("schema_path", "schema.dsql")
	viper.SetDefault("migrations_dir", "migrations")
	viper.SetDefault("provider", "postgres")

	// Config file is optional.
	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		SchemaPath:    viper.GetString("schema_path"),
		MigrationsDir: viper.GetString("migrations_dir"),
		Provider:      viper.GetString("provider"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Debug:         viper.GetBool("debug"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = viper.GetString("database_url")
	}

	return cfg, nil
}

// Save writes the configuration to .driftsql.yaml in the current directory.
func Save(cfg *Config) error {
	viper.Set("schema_path", cfg.SchemaPath)
	viper.Set("migrations_dir", cfg.MigrationsDir)
	viper.Set("provider", cfg.Provider)
	return viper.WriteConfigAs(".driftsql.yaml")
}
