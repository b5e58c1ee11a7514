// Package sqlclass clasifica sentencias SQL como lectura o escritura sin
// parsear la gramática completa: inspecciona el primer keyword top-level.
//
// La clasificación es best-effort y fail-safe: todo lo que no se reconoce
// (o contiene múltiples sentencias top-level) se resuelve como escritura
// para que el gate bloquee en vez de permitir un write inseguro en réplica.
package sqlclass

import "strings"

// Class es el resultado de clasificar una sentencia.
type Class int8

const (
	Read Class = iota
	Write
	Ambiguous
)

// AmbiguousIsWrite documenta la política fail-safe: una sentencia ambigua
// se trata como escritura. Los tests la asertan explícitamente en vez de
// inferirla de las listas de keywords.
const AmbiguousIsWrite = true

func (c Class) String() string {
	switch c {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "ambiguous"
	}
}

// Effective resuelve la política: Ambiguous => Write.
func (c Class) Effective() Class {
	if c == Ambiguous && AmbiguousIsWrite {
		return Write
	}
	return c
}

// IsWrite indica si la sentencia, ya resuelta la política, debe tratarse
// como escritura.
func (c Class) IsWrite() bool { return c.Effective() == Write }

// Keywords de lectura. PRAGMA se maneja aparte (la forma con '=' escribe).
var readKeywords = map[string]struct{}{
	"SELECT":  {},
	"VALUES":  {},
	"EXPLAIN": {},
}

// Keywords de escritura. Incluye DDL y control de transacciones: un BEGIN
// explícito se gatea igual que la mutación que envuelve.
var writeKeywords = map[string]struct{}{
	"INSERT":    {},
	"UPDATE":    {},
	"DELETE":    {},
	"REPLACE":   {},
	"CREATE":    {},
	"ALTER":     {},
	"DROP":      {},
	"BEGIN":     {},
	"COMMIT":    {},
	"END":       {},
	"ROLLBACK":  {},
	"SAVEPOINT": {},
	"RELEASE":   {},
	"VACUUM":    {},
	"REINDEX":   {},
	"ANALYZE":   {},
	"ATTACH":    {},
	"DETACH":    {},
}

// Classify clasifica una sentencia SQL. Determinística, sin side effects,
// segura para el hot path (se llama por cada statement).
func Classify(stmt string) Class {
	s := skipLeading(stmt)
	if s == "" {
		return Ambiguous
	}

	kw := leadingKeyword(s)
	if kw == "" {
		return Ambiguous
	}

	// Múltiples sentencias top-level: no podemos garantizar la clase de
	// las siguientes, así que resolvemos ambigua (=> write por política).
	if hasMultipleStatements(s) {
		return Ambiguous
	}

	if _, ok := readKeywords[kw]; ok {
		return Read
	}
	if kw == "PRAGMA" {
		return classifyPragma(s)
	}
	if _, ok := writeKeywords[kw]; ok {
		return Write
	}
	return Ambiguous
}

// classifyPragma distingue la forma query (PRAGMA foo / PRAGMA foo(bar))
// de la forma assignment (PRAGMA foo = bar), que muta estado.
func classifyPragma(s string) Class {
	// El '=' solo puede aparecer en la forma assignment: los nombres de
	// pragma y sus argumentos call-form no lo contienen.
	if strings.ContainsRune(s, '=') {
		return Write
	}
	return Read
}

// skipLeading remueve whitespace y comentarios (-- y /* */) del inicio.
func skipLeading(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n\f\v")
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
			} else {
				return ""
			}
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s[2:], "*/"); i >= 0 {
				s = s[2+i+2:]
			} else {
				// Comentario sin cerrar: no hay sentencia útil.
				return ""
			}
		default:
			return s
		}
	}
}

// leadingKeyword devuelve el primer token alfabético en mayúsculas.
func leadingKeyword(s string) string {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			end++
			continue
		}
		break
	}
	return strings.ToUpper(s[:end])
}

// hasMultipleStatements detecta un ';' top-level seguido de contenido real.
// El scan es consciente de strings ('', "", ``), identificadores [] y
// comentarios para no confundir un ';' embebido.
func hasMultipleStatements(s string) bool {
	i := 0
	for i < len(s) {
		switch c := s[i]; c {
		case '\'', '"', '`':
			i = skipQuoted(s, i, c)
		case '[':
			if j := strings.IndexByte(s[i:], ']'); j >= 0 {
				i += j + 1
			} else {
				i = len(s)
			}
		case '-':
			if i+1 < len(s) && s[i+1] == '-' {
				if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
					i += j + 1
				} else {
					i = len(s)
				}
			} else {
				i++
			}
		case '/':
			if i+1 < len(s) && s[i+1] == '*' {
				if j := strings.Index(s[i+2:], "*/"); j >= 0 {
					i += j + 4
				} else {
					i = len(s)
				}
			} else {
				i++
			}
		case ';':
			// ¿Queda algo después del terminador?
			return skipLeading(s[i+1:]) != ""
		default:
			i++
		}
	}
	return false
}

// skipQuoted avanza más allá de un literal con comillas q, respetando el
// escape SQL por duplicación ('' dentro de '...').
func skipQuoted(s string, start int, q byte) int {
	i := start + 1
	for i < len(s) {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}
