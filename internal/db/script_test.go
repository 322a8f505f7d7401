package db

import (
	"database/sql"
	"reflect"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		name      string
		script    string
		backslash bool
		want      []string
	}{
		{"simple", "CREATE TABLE a(x); INSERT INTO a VALUES (1);", false,
			[]string{"CREATE TABLE a(x)", "INSERT INTO a VALUES (1)"}},
		{"no trailing semicolon", "SELECT 1", false, []string{"SELECT 1"}},
		{"empty and comment-only", " ; -- nothing\n ; /* still nothing */ ;", false, nil},
		{"semicolon in string", "INSERT INTO a VALUES ('a;b'); SELECT 2;", false,
			[]string{"INSERT INTO a VALUES ('a;b')", "SELECT 2"}},
		{"doubled quote", "INSERT INTO a VALUES ('it''s;'); SELECT 3", false,
			[]string{"INSERT INTO a VALUES ('it''s;')", "SELECT 3"}},
		{"backslash escapes", `INSERT INTO a VALUES ('x\';y'); SELECT 4`, true,
			[]string{`INSERT INTO a VALUES ('x\';y')`, "SELECT 4"}},
		{"quoted identifiers", "CREATE TABLE \"a;b\"(`c;d` INT, [e;f] INT); SELECT 5", false,
			[]string{"CREATE TABLE \"a;b\"(`c;d` INT, [e;f] INT)", "SELECT 5"}},
		{"line and block comments", "SELECT 1; -- a; b\nSELECT /* ; */ 2;", false,
			[]string{"SELECT 1", "-- a; b\nSELECT /* ; */ 2"}},
		{"dollar quoted body", "CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql; SELECT f();", false,
			[]string{"CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql", "SELECT f()"}},
		{"tagged dollar quote", "DO $body$ BEGIN PERFORM 1; END $body$; SELECT 1", false,
			[]string{"DO $body$ BEGIN PERFORM 1; END $body$", "SELECT 1"}},
		{"trigger with case", "CREATE TRIGGER tr AFTER INSERT ON a BEGIN UPDATE a SET x = CASE WHEN x > 0 THEN 1 ELSE 0 END; DELETE FROM b; END; SELECT 6;", false,
			[]string{"CREATE TRIGGER tr AFTER INSERT ON a BEGIN UPDATE a SET x = CASE WHEN x > 0 THEN 1 ELSE 0 END; DELETE FROM b; END", "SELECT 6"}},
		{"begin transaction is not compound", "BEGIN; SELECT 1; END;", false,
			[]string{"BEGIN", "SELECT 1", "END"}},
		{"procedure with end if", "CREATE PROCEDURE p() BEGIN IF 1 THEN SELECT 1; END IF; SELECT 2; END; SELECT 3", true,
			[]string{"CREATE PROCEDURE p() BEGIN IF 1 THEN SELECT 1; END IF; SELECT 2; END", "SELECT 3"}},
		{"procedure with loops", "CREATE PROCEDURE p() BEGIN WHILE x < 3 DO SET x = x + 1; END WHILE; l: LOOP LEAVE l; END LOOP l; REPEAT SET x = x - 1; UNTIL x = 0 END REPEAT; END; SELECT 4", true,
			[]string{"CREATE PROCEDURE p() BEGIN WHILE x < 3 DO SET x = x + 1; END WHILE; l: LOOP LEAVE l; END LOOP l; REPEAT SET x = x - 1; UNTIL x = 0 END REPEAT; END", "SELECT 4"}},
		{"procedure with case statement", "CREATE PROCEDURE p() BEGIN CASE x WHEN 1 THEN SELECT 1; ELSE SELECT 2; END CASE; SELECT IF(x, 1, 0); END; SELECT 5", true,
			[]string{"CREATE PROCEDURE p() BEGIN CASE x WHEN 1 THEN SELECT 1; ELSE SELECT 2; END CASE; SELECT IF(x, 1, 0); END", "SELECT 5"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := splitStatements(c.script, c.backslash)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("splitStatements(%q)\n got %q\nwant %q", c.script, got, c.want)
			}
		})
	}
}

func TestReturnsRows(t *testing.T) {
	cases := map[string]bool{
		"SELECT 1":                                  true,
		"  select name from t":                      true,
		"-- lead\nSELECT 1":                         true,
		"(SELECT 1) UNION (SELECT 2)":               true,
		"WITH x AS (SELECT 1) SELECT * FROM x":      true,
		"PRAGMA table_info(t)":                      true,
		"SHOW TABLES":                               true,
		"INSERT INTO t VALUES (1) RETURNING id":     true,
		"INSERT INTO t VALUES ('returning')":        false,
		"UPDATE counter SET v = v + 1":              false,
		"DELETE FROM t":                             false,
		"CREATE TABLE t(id INTEGER)":                false,
		"/* select */ UPDATE t SET select_col = 1": false,
	}
	for stmt, want := range cases {
		if got := returnsRows(stmt); got != want {
			t.Fatalf("returnsRows(%q) = %v; want %v", stmt, got, want)
		}
	}
}

func TestBindNamed(t *testing.T) {
	stmt, args, err := bindNamed(
		"SELECT * FROM u WHERE name = :name AND age > ? AND note = ':name' AND id = @id AND x::text = $tag",
		[]any{sql.Named("name", "bob"), 3, sql.Named("id", 9), sql.Named("tag", "t")},
		false,
	)
	if err != nil {
		t.Fatalf("bindNamed: %v", err)
	}
	wantStmt := "SELECT * FROM u WHERE name = ? AND age > ? AND note = ':name' AND id = ? AND x::text = ?"
	if stmt != wantStmt {
		t.Fatalf("stmt = %q\nwant  %q", stmt, wantStmt)
	}
	wantArgs := []any{"bob", 3, 9, "t"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %v; want %v", args, wantArgs)
	}
}

func TestBindNamed_PassThroughWithoutNamedArgs(t *testing.T) {
	in := []any{1, "a"}
	stmt, args, err := bindNamed("SELECT ?, ?", in, false)
	if err != nil || stmt != "SELECT ?, ?" || !reflect.DeepEqual(args, in) {
		t.Fatalf("unexpected rewrite: %q %v %v", stmt, args, err)
	}
}

func TestBindNamed_Errors(t *testing.T) {
	if _, _, err := bindNamed("SELECT :a", []any{sql.Named("a", 1), sql.Named("b", 2)}, false); err == nil {
		t.Fatalf("expected error for unused named argument")
	}
	if _, _, err := bindNamed("SELECT :a, ?", []any{sql.Named("a", 1)}, false); err == nil {
		t.Fatalf("expected error for missing positional argument")
	}
}

func TestNumberPlaceholders(t *testing.T) {
	cases := map[string]string{
		"SELECT v FROM t WHERE id = ? AND k = ?":        "SELECT v FROM t WHERE id = $1 AND k = $2",
		"SELECT '?' AS q, ? AS v":                       "SELECT '?' AS q, $1 AS v",
		`SELECT "a?" FROM t WHERE x = ? -- why?` + "\n": `SELECT "a?" FROM t WHERE x = $1 -- why?` + "\n",
		"SELECT 1 /* ? */":                              "SELECT 1 /* ? */",
		"SELECT $$?$$, ?":                               "SELECT $$?$$, $1",
	}
	for in, want := range cases {
		if got := numberPlaceholders(in); got != want {
			t.Fatalf("numberPlaceholders(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestClassifyTxControl(t *testing.T) {
	cases := map[string]txControl{
		"BEGIN":                                txBoundary,
		"begin immediate transaction":          txBoundary,
		"START TRANSACTION":                    txBoundary,
		"COMMIT":                               txBoundary,
		"END TRANSACTION":                      txBoundary,
		"ROLLBACK":                             txAbort,
		"ROLLBACK WORK":                        txAbort,
		"ROLLBACK TO SAVEPOINT a":              txNone,
		"ROLLBACK TRANSACTION TO a":            txNone,
		"START SLAVE":                          txNone,
		"CREATE TRIGGER t BEGIN END":           txNone,
		"/* BEGIN */ INSERT INTO t VALUES (1)": txNone,
	}
	for stmt, want := range cases {
		if got := classifyTxControl(stmt); got != want {
			t.Fatalf("classifyTxControl(%q) = %d; want %d", stmt, got, want)
		}
	}
}

func TestPrepareScript_KeepsStatementIndexes(t *testing.T) {
	got, err := prepareScript("BEGIN; CREATE TABLE a(x); COMMIT; INSERT INTO a VALUES (1);", false)
	if err != nil {
		t.Fatalf("prepareScript: %v", err)
	}
	want := []scriptStatement{{index: 1, text: "CREATE TABLE a(x)"}, {index: 3, text: "INSERT INTO a VALUES (1)"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v; want %+v", got, want)
	}
}
