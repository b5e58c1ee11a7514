package sqlclass_test

import (
	"testing"

	"github.com/dropDatabas3/litegate/internal/sqlclass"
)

func TestClassify_Reads(t *testing.T) {
	cases := []string{
		"SELECT * FROM users",
		"select 1",
		"  \n\t SELECT id FROM t",
		"-- comment\nSELECT 1",
		"/* leading */ SELECT 1",
		"/* multi\nline */\n-- more\nselect 1",
		"EXPLAIN QUERY PLAN SELECT * FROM t",
		"explain select 1",
		"PRAGMA table_info(users)",
		"pragma journal_mode",
		"VALUES (1, 2)",
	}
	for _, stmt := range cases {
		if got := sqlclass.Classify(stmt); got != sqlclass.Read {
			t.Errorf("Classify(%q) = %v, want Read", stmt, got)
		}
	}
}

func TestClassify_Writes(t *testing.T) {
	cases := []string{
		"INSERT INTO t (a) VALUES (1)",
		"insert into t values (1)",
		"UPDATE t SET a = 1",
		"DELETE FROM t",
		"delete from t where id = 1",
		"REPLACE INTO t VALUES (1)",
		"CREATE TABLE t (id INTEGER)",
		"ALTER TABLE t ADD COLUMN b",
		"DROP TABLE t",
		"BEGIN",
		"BEGIN IMMEDIATE",
		"COMMIT",
		"ROLLBACK",
		"SAVEPOINT sp1",
		"RELEASE sp1",
		"VACUUM",
		"REINDEX",
		"ANALYZE",
		"ATTACH DATABASE 'x.db' AS x",
		"-- comment first\nDELETE FROM t",
		"PRAGMA journal_mode = WAL", // assignment form muta estado
	}
	for _, stmt := range cases {
		if got := sqlclass.Classify(stmt); got != sqlclass.Write {
			t.Errorf("Classify(%q) = %v, want Write", stmt, got)
		}
	}
}

func TestClassify_Ambiguous(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"-- only a comment",
		"/* unterminated",
		"WITH cte AS (SELECT 1) INSERT INTO t SELECT * FROM cte",
		"with x as (select 1) select * from x", // CTE: no garantizamos la cola
		"FROBNICATE the database",
		"123 not sql",
		"SELECT 1; DELETE FROM t", // múltiples sentencias top-level
	}
	for _, stmt := range cases {
		if got := sqlclass.Classify(stmt); got != sqlclass.Ambiguous {
			t.Errorf("Classify(%q) = %v, want Ambiguous", stmt, got)
		}
	}
}

func TestClassify_SemicolonAwareness(t *testing.T) {
	// Un ';' embebido en string/comentario o al final no es multi-statement.
	reads := []string{
		"SELECT 'a;b' FROM t",
		`SELECT "x;y" FROM t`,
		"SELECT 1 -- trailing; comment",
		"SELECT 1;",
		"SELECT 1; \n -- nada más",
		"SELECT * FROM [weird;name]",
	}
	for _, stmt := range reads {
		if got := sqlclass.Classify(stmt); got != sqlclass.Read {
			t.Errorf("Classify(%q) = %v, want Read", stmt, got)
		}
	}
	// Escape por duplicación: '' dentro del literal.
	if got := sqlclass.Classify("SELECT 'it''s; fine' FROM t"); got != sqlclass.Read {
		t.Errorf("doubled-quote literal: got %v, want Read", got)
	}
}

func TestAmbiguousResolvesToWrite(t *testing.T) {
	// La política fail-safe es una constante con nombre, no una inferencia.
	if !sqlclass.AmbiguousIsWrite {
		t.Fatal("AmbiguousIsWrite must be true: ambiguous statements block, never pass")
	}
	if got := sqlclass.Ambiguous.Effective(); got != sqlclass.Write {
		t.Fatalf("Ambiguous.Effective() = %v, want Write", got)
	}
	if !sqlclass.Ambiguous.IsWrite() {
		t.Fatal("Ambiguous.IsWrite() = false, want true")
	}
	if sqlclass.Read.IsWrite() {
		t.Fatal("Read.IsWrite() = true, want false")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	// Puramente sintáctica: misma entrada, misma salida, sin estado previo.
	stmt := "UPDATE t SET a = 1 WHERE id = 2"
	first := sqlclass.Classify(stmt)
	for i := 0; i < 100; i++ {
		if got := sqlclass.Classify(stmt); got != first {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}
