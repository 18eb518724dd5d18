// Package config provides configuration management for the region sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Every setting has a default declared in the struct
// tags of its section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP listen address and API key
//   - Mongo: regions collection and batch limits
//   - Oplog: tailing of remote changes
//   - Database: optional replication journal (MySQL or SQLite)
//   - Storage: S3/MinIO credentials and snapshot bucket
//   - Regions: replicated worlds
//   - Log: Logging level and format
//
// Environment variables map to nested keys, e.g. MONGO_URI -> mongo.uri.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Mongo.Namespace())
package config
