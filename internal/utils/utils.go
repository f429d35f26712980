package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPGUniqueViolation reports whether error is PostgreSQL unique constraint violation (code 23505).
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

// IsPGPermissionDenied reports whether error is PostgreSQL insufficient_privilege (code 42501).
func IsPGPermissionDenied(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "42501"
	}
	return false
}

const indexHintMarker = "requires an index"

var indexLinkRe = regexp.MustCompile(`https://[^\s"']+`)

// IndexHint checks whether err is the store's "query requires an index"
// condition and extracts the embedded remediation link, if any. Detection
// is by message substring; the hosted store reports the condition only as
// text with a console URL inside.
func IndexHint(err error) (link string, ok bool) {
	if err == nil {
		return "", false
	}
	msg := err.Error()
	if !strings.Contains(msg, indexHintMarker) {
		return "", false
	}
	return indexLinkRe.FindString(msg), true
}
