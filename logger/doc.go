// Package logger provides structured logging for procpipe using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("process")
//	log.Debug("process spawned", logger.Fields(logger.FieldPID, pid))
package logger
