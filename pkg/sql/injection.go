package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on an identifier.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Identifier  string // The identifier that failed the check
}

// CheckIdentifierForInjection uses libinjection to detect SQL injection
// patterns in a schema-supplied identifier (table or column name).
//
// Identifiers come from external schemas, and join conditions composed from
// them end up inside model-generation SQL, so they are checked before being
// interpolated anywhere.
//
// Returns nil if no injection is detected, or an InjectionCheckResult with
// details about the detected pattern.
func CheckIdentifierForInjection(identifier string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(identifier)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			Identifier:  identifier,
		}
	}

	return nil
}

// CheckIdentifiers validates a set of identifiers for SQL injection attempts.
// Returns one result per identifier that failed the check; empty if all clean.
func CheckIdentifiers(identifiers ...string) []InjectionCheckResult {
	var failed []InjectionCheckResult
	for _, id := range identifiers {
		if result := CheckIdentifierForInjection(id); result != nil {
			failed = append(failed, *result)
		}
	}
	return failed
}
