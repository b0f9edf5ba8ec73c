// Package logger provides structured logging for sawmill using zerolog.
//
// Library packages log at debug level only (origins opened, processes
// spawned, directories listed); the CLI owns the global configuration.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.WithStage("source.cat")
//	log.Debug("opened origin", logger.Fields(logger.FieldPath, path))
package logger
