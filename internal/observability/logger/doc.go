// Package logger provee un logger Zap singleton con scoping por contexto.
//
// # Uso
//
// Inicialización (una vez, en main):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,      // "dev" o "prod"
//	    Level: cfg.App.LogLevel, // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En handlers/services (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("role refreshed", logger.Role(snap.Role.String()))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("gate started")
package logger
