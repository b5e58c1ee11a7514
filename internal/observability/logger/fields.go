package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - CLUSTER
// =================================================================================

// Role crea un campo para el rol detectado (primary/replica).
func Role(v string) zap.Field {
	return zap.String("role", v)
}

// NodeID crea un campo para el ID de nodo.
func NodeID(v string) zap.Field {
	return zap.String("node_id", v)
}

// Term crea un campo para el término de la elección.
func Term(v uint64) zap.Field {
	return zap.Uint64("term", v)
}

// PrimaryAddr crea un campo para la dirección del primary.
func PrimaryAddr(v string) zap.Field {
	return zap.String("primary_addr", v)
}

// Statement crea un campo para una sentencia SQL, truncada: los statements
// pueden traer datos de usuario.
func Statement(v string) zap.Field {
	const max = 120
	if len(v) > max {
		v = v[:max] + "..."
	}
	return zap.String("statement", v)
}

// StatementClass crea un campo para la clase de una sentencia.
func StatementClass(v string) zap.Field {
	return zap.String("statement_class", v)
}

// Mount crea un campo para el path del mount de replicación.
func Mount(v string) zap.Field {
	return zap.String("mount", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// ID crea un campo genérico para un ID.
func ID(v string) zap.Field {
	return zap.String("id", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
