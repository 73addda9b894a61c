package config

import (
	"reflect"
	"strings"

	"storagebox/core/database"
	"storagebox/core/kv/redisstore"
	"storagebox/core/logger"
	"storagebox/core/server"
	"storagebox/core/stats"
	"storagebox/core/storage"
	"storagebox/feature/bank"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations owned by the packages that consume them.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the SQL backend.
	Database database.Config `mapstructure:"database"`
	// Redis holds configuration for the Redis backend and Redis stats.
	Redis redisstore.Config `mapstructure:"redis"`
	// Storage holds configuration for the object storage used by bulk imports.
	Storage storage.Config `mapstructure:"storage"`
	// Bank holds the item pool, ledger and resolver tunables.
	Bank bank.Config `mapstructure:"bank"`
	// Stats holds configuration for resolve statistics.
	Stats stats.Config `mapstructure:"stats"`
}

// LoadConfig loads configuration from environment variables and a .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Missing .env is normal outside development.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// BANK_PAGE_SIZE -> bank.page_size
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Bank.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues walks the struct and registers every 'mapstructure' key with its 'default' tag,
// which is what makes AutomaticEnv pick the key up.
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

		// time.Duration is an int64, so only real structs recurse.
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
