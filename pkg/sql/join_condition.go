package sql

import (
	"fmt"
	"strings"
)

// QuoteIdentifier quotes a table or column name with ANSI double quotes,
// escaping any embedded quote characters. Dialect-specific quoting (e.g.
// SQL Server brackets) lives in the individual connectors; join conditions
// carried on relationship links use the ANSI form.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// JoinCondition composes the column-equality expression for a relationship
// link: "left_table"."left_column" = "right_table"."right_column".
//
// All four identifiers are schema-supplied and pass an injection check
// before being interpolated.
func JoinCondition(leftTable, leftColumn, rightTable, rightColumn string) (string, error) {
	if failed := CheckIdentifiers(leftTable, leftColumn, rightTable, rightColumn); len(failed) > 0 {
		return "", fmt.Errorf("identifier %q failed injection check (fingerprint %s)",
			failed[0].Identifier, failed[0].Fingerprint)
	}

	return fmt.Sprintf("%s.%s = %s.%s",
		QuoteIdentifier(leftTable), QuoteIdentifier(leftColumn),
		QuoteIdentifier(rightTable), QuoteIdentifier(rightColumn)), nil
}
