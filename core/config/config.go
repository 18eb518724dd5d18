package config

import (
	"errors"
	"reflect"
	"strings"

	"region-sync/core/database"
	"region-sync/core/logger"
	"region-sync/core/mongodb"
	"region-sync/core/oplog"
	"region-sync/core/server"
	"region-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the replication journal database.
	Database database.Config `mapstructure:"database"`
	// Mongo holds configuration for the regions collection.
	Mongo mongodb.Config `mapstructure:"mongo"`
	// Oplog holds configuration for tailing remote changes.
	Oplog oplog.Config `mapstructure:"oplog"`
	// Regions holds configuration for the replicated worlds.
	Regions RegionsConfig `mapstructure:"regions"`
}

// RegionsConfig lists the worlds whose regions are replicated.
type RegionsConfig struct {
	// Worlds is a comma separated list of world names.
	Worlds []string `mapstructure:"worlds" default:"world"`
	// Snapshots turns the snapshot endpoints on.
	Snapshots bool `mapstructure:"snapshots" default:"true"`
	// EnumFlags names the flags whose stored strings are enum constants.
	EnumFlags []string `mapstructure:"enum_flags" default:"game-mode,weather-lock"`
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var err error
	if c.Mongo.URI == "" {
		err = multierr.Append(err, errors.New("mongo.uri is required"))
	}
	if c.Mongo.Database == "" || c.Mongo.Collection == "" {
		err = multierr.Append(err, errors.New("mongo.database and mongo.collection are required"))
	}
	worlds := c.Regions.Worlds[:0]
	for _, w := range c.Regions.Worlds {
		if w = strings.TrimSpace(w); w != "" {
			worlds = append(worlds, w)
		}
	}
	c.Regions.Worlds = worlds
	if len(worlds) == 0 {
		err = multierr.Append(err, errors.New("regions.worlds must name at least one world"))
	}
	return err
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
