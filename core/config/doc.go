// Package config loads the application configuration.
//
// Values come from the environment, optionally seeded from a .env file, and
// fall back to the 'default' tags of the section structs. Keys are nested by
// section: MODS_DIRECTORY maps to mods.directory.
//
// # Sections
//
//   - Server: HTTP port and API key
//   - Storage: S3/MinIO endpoint, credentials, bucket and prefix of the base game data
//   - Log: level and format
//   - Database: driver (mysql or sqlite) and connection details for collections
//   - Mods: package directory and discovery workers
//   - Collections: rebuild workers and queue size
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Mods.Directory)
package config
