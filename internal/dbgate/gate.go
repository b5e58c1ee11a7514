// Package dbgate es la capa de base de datos consumidora del detector: un
// wrapper sobre database/sql (driver sqlite3) que clasifica cada sentencia
// y rechaza escrituras cuando el nodo no es primary.
//
// Política fail-closed: una escritura en réplica se rechaza siempre, nunca
// se degrada a lectura ni se redirige en silencio. El redirect es decisión
// explícita del caller usando la URL que viaja en NotPrimaryError.
package dbgate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dropDatabas3/litegate/internal/detect"
	"github.com/dropDatabas3/litegate/internal/metrics"
	"github.com/dropDatabas3/litegate/internal/observability/logger"
	"github.com/dropDatabas3/litegate/internal/sqlclass"
)

// NotPrimaryError se devuelve cuando una sentencia clasificada write llega
// a un nodo réplica. Lleva la URL del primary (si se pudo resolver) para
// que el caller redirija si quiere.
type NotPrimaryError struct {
	Statement  string
	Class      sqlclass.Class
	PrimaryURL string // "" si no se pudo resolver
}

func (e *NotPrimaryError) Error() string {
	if e.PrimaryURL != "" {
		return fmt.Sprintf("not primary: %s statement rejected (primary at %s)", e.Class, e.PrimaryURL)
	}
	return fmt.Sprintf("not primary: %s statement rejected", e.Class)
}

// IsNotPrimary indica si err es un rechazo por no-primary.
func IsNotPrimary(err error) bool {
	var np *NotPrimaryError
	return errors.As(err, &np)
}

// Gate envuelve un *sql.DB con el chequeo de rol por sentencia.
type Gate struct {
	db         *sql.DB
	classifier *sqlclass.Classifier
	detector   detect.RoleDetector
	urls       *detect.URLResolver
}

// Open abre la base SQLite dentro del mount y arma el gate. detector es
// normalmente un *detect.CachedDetector; urls puede ser nil (los rechazos
// salen sin URL de redirect).
func Open(mountPath, database string, detector detect.RoleDetector, urls *detect.URLResolver) (*Gate, error) {
	if database == "" {
		return nil, errors.New("dbgate: empty database name")
	}
	dsn := filepath.Join(mountPath, database)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// Un solo writer: SQLite + FUSE no toleran escritores concurrentes.
	db.SetMaxOpenConns(1)
	return &Gate{
		db:         db,
		classifier: sqlclass.NewClassifier(0),
		detector:   detector,
		urls:       urls,
	}, nil
}

// NewWithDB arma un gate sobre un *sql.DB ya abierto (tests, pools ajenos).
func NewWithDB(db *sql.DB, detector detect.RoleDetector, urls *detect.URLResolver) *Gate {
	return &Gate{
		db:         db,
		classifier: sqlclass.NewClassifier(0),
		detector:   detector,
		urls:       urls,
	}
}

// DB expone el *sql.DB subyacente para lecturas que quieran saltear la
// clasificación (el caller asume la responsabilidad).
func (g *Gate) DB() *sql.DB { return g.db }

// guard chequea la sentencia contra el rol actual. Devuelve nil si puede
// ejecutarse localmente.
func (g *Gate) guard(ctx context.Context, stmt string) error {
	class := g.classifier.Classify(stmt)
	if !class.IsWrite() {
		return nil
	}

	snap, err := g.detector.DetectRole(ctx)
	if err != nil {
		// Sin rol conocido no ejecutamos una escritura: fail-closed.
		return fmt.Errorf("dbgate: role unknown, rejecting write: %w", err)
	}
	metrics.RoleChecks.WithLabelValues(snap.Role.String()).Inc()
	if snap.Role == detect.RolePrimary {
		return nil
	}

	metrics.WritesRejected.Inc()
	npe := &NotPrimaryError{Statement: stmt, Class: class}
	if g.urls != nil {
		if u, uerr := g.urls.PrimaryURL(ctx); uerr == nil {
			npe.PrimaryURL = u
		}
	}
	logger.From(ctx).Debug("write rejected on replica",
		logger.StatementClass(class.String()), logger.Statement(stmt))
	return npe
}

// ExecContext ejecuta una sentencia, rechazándola antes de tocar la base
// si es write-effective y no somos primary.
func (g *Gate) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := g.guard(ctx, query); err != nil {
		return nil, err
	}
	return g.db.ExecContext(ctx, query, args...)
}

// QueryContext ejecuta una consulta. Las lecturas pasan siempre; un query
// clasificado write (ej: INSERT ... RETURNING vía Query) se gatea igual.
func (g *Gate) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := g.guard(ctx, query); err != nil {
		return nil, err
	}
	return g.db.QueryContext(ctx, query, args...)
}

// BeginTx abre una transacción solo si somos primary: un BEGIN explícito
// se trata como escritura (la transacción que envuelve probablemente muta).
func (g *Gate) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if err := g.guard(ctx, "BEGIN"); err != nil {
		return nil, err
	}
	return g.db.BeginTx(ctx, opts)
}

// PingContext delega al pool subyacente.
func (g *Gate) PingContext(ctx context.Context) error { return g.db.PingContext(ctx) }

// Close cierra el pool subyacente.
func (g *Gate) Close() error { return g.db.Close() }
