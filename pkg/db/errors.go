package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// failure. A non-empty constraintName narrows the check to that constraint;
// otherwise any duplicate-key message matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	if constraintName != "" {
		return strings.Contains(text, constraintName)
	}
	return strings.Contains(text, "duplicate key value")
}
