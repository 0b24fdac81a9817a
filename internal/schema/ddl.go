package schema

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL returns a CREATE TABLE statement for the given table
// definition. The statement has the form:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk"),
//	  FOREIGN KEY ("fk") REFERENCES "dim" ("pk")
//	);
//
// Identifiers are double-quoted, which both SQLite and Postgres accept, and
// the declared types (INTEGER, REAL, TEXT) are valid in both dialects, so the
// same statement is used for every backend.
func BuildCreateTableSQL(t TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: table %s has no columns", name)
	}

	parts := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))

	for _, c := range t.Columns {
		cn := strings.TrimSpace(c.Name)
		if cn == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", name)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s.%s missing SQLType", name, cn)
		}

		var sb strings.Builder
		sb.WriteString(QuoteIdent(cn))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if c.NotNull {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		parts = append(parts, sb.String())
	}

	if len(t.PrimaryKey) > 0 {
		pks := make([]string, len(t.PrimaryKey))
		for i, pk := range t.PrimaryKey {
			pks[i] = QuoteIdent(pk)
		}
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		parts = append(parts, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s (%s)",
			QuoteIdent(fk.Column), QuoteIdent(fk.RefTable), QuoteIdent(fk.RefColumn),
		))
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteIdent(name),
		strings.Join(parts, ",\n  "),
	)
	return stmt, nil
}

// QuoteIdent double-quotes a SQL identifier, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
