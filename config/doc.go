// Package config loads sawmill's configuration.
//
// It uses Viper to read an optional sawmill.yml, an optional .env file
// (godotenv), and SAWMILL_* environment variables, in increasing order of
// precedence. Command-line flags are applied on top by the CLI.
//
// # Usage
//
//	cfg := config.Default()
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Nested keys map to environment variables by upper-casing and replacing
// dots with underscores: logs.dir becomes SAWMILL_LOGS_DIR.
package config
