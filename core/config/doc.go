// Package config provides configuration management for storagebox.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (loaded with godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key and per-client rate limit
//   - Log: logging level and format
//   - Database: MySQL/SQLite connection details for the sql backend
//   - Redis: connection details and key prefix for the redis backend
//   - Storage: S3/MinIO credentials and bucket used for bulk item imports
//   - Bank: backend selection, table names, batching, backoff and claim tunables
//   - Stats: resolve statistics recorder
//
// Every key maps to an environment variable by upper-casing it and replacing dots
// with underscores, e.g. bank.max_batch_size -> BANK_MAX_BATCH_SIZE.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Bank.Backend)
package config
