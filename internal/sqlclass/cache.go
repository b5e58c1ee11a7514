package sqlclass

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultMemoTTL es el TTL de la memoización de clasificaciones. La clase
// de un string SQL nunca cambia, el TTL solo acota memoria con statements
// dinámicos (interpolados) que no se repiten.
const DefaultMemoTTL = time.Minute

// Classifier memoiza Classify por string de sentencia. Pensado para ORMs
// que re-ejecutan los mismos statements preparados miles de veces por
// segundo: evita re-escanear comentarios/strings en cada llamada.
type Classifier struct {
	memo *gocache.Cache
}

// NewClassifier crea un Classifier con el TTL dado (0 => DefaultMemoTTL).
func NewClassifier(ttl time.Duration) *Classifier {
	if ttl <= 0 {
		ttl = DefaultMemoTTL
	}
	return &Classifier{memo: gocache.New(ttl, 5*time.Minute)}
}

// Classify devuelve la clase de stmt, usando la memoización si está.
func (c *Classifier) Classify(stmt string) Class {
	if v, ok := c.memo.Get(stmt); ok {
		if cl, ok := v.(Class); ok {
			return cl
		}
	}
	cl := Classify(stmt)
	c.memo.SetDefault(stmt, cl)
	return cl
}

// Len devuelve la cantidad de entradas memoizadas (para stats/tests).
func (c *Classifier) Len() int { return c.memo.ItemCount() }
