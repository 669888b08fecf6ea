package config

import (
	"fmt"
	"reflect"
	"strings"

	"mod-manager/core/collection"
	"mod-manager/core/database"
	"mod-manager/core/logger"
	"mod-manager/core/mods"
	"mod-manager/core/server"
	"mod-manager/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding the base game data.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the collection database.
	Database database.Config `mapstructure:"database"`
	// Mods holds configuration for the package store.
	Mods mods.Config `mapstructure:"mods"`
	// Collections holds configuration for collection rebuilds.
	Collections collection.Config `mapstructure:"collections"`
}

// LoadConfig loads configuration from environment variables and the .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// a missing .env is fine in production
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// MODS_DIRECTORY -> mods.directory
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Mods.Directory) == "" {
		return fmt.Errorf("mods.directory must not be empty")
	}
	if c.Mods.Workers < 1 {
		return fmt.Errorf("mods.workers must be at least 1, got %d", c.Mods.Workers)
	}
	if c.Collections.RebuildWorkers < 1 {
		return fmt.Errorf("collections.rebuild_workers must be at least 1, got %d", c.Collections.RebuildWorkers)
	}
	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// bindValues walks the struct and registers every 'mapstructure' key in viper
// with the value of its 'default' tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// registering an empty default still lets AutomaticEnv find the key
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
