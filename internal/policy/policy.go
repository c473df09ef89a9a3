// Package policy decides what a caller may see of a link record based
// on deployment auth mode, authentication state and record ownership.
package policy

import (
	"errors"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
)

// Tier is the visibility level granted to a caller.
type Tier int

const (
	// TierPublic exposes only code, original URL and creation time.
	TierPublic Tier = iota
	// TierFull exposes everything, including clicks and ownership.
	TierFull
)

const (
	MinPageSize = 1
	MaxPageSize = 50
)

var ErrInvalidPagination = errors.New("page must be >= 1 and page_size within 1..50")

// Evaluate returns the visibility tier for a record. Rules, in order:
//  1. auth disabled: full for everyone, the deployment has no privacy
//     boundary
//  2. no identity presented: public
//  3. record bound to a user: full only for that user, other
//     authenticated callers are treated like anonymous ones
//  4. record without a bound user: public, authentication alone never
//     elevates access to unclaimed links
func Evaluate(rec *models.Link, authEnabled bool, ident *auth.Identity) Tier {
	if !authEnabled {
		return TierFull
	}
	if ident == nil {
		return TierPublic
	}
	if rec.CreatedByUserID != "" && rec.CreatedByUserID == ident.Subject {
		return TierFull
	}
	return TierPublic
}

// IsOwner reports whether ident may mutate the record. Records without
// a bound user have no owner and nobody may mutate them.
func IsOwner(rec *models.Link, ident *auth.Identity) bool {
	if ident == nil || ident.Subject == "" {
		return false
	}
	return rec.CreatedByUserID != "" && rec.CreatedByUserID == ident.Subject
}

// DeriveSourceType fixes the record's origin at creation time:
// an authenticated subject means a human, a client-only credential a
// service, no credential under auth an anonymous caller, and with auth
// disabled the origin is unknowable.
func DeriveSourceType(authEnabled bool, ident *auth.Identity) models.SourceType {
	switch {
	case ident != nil && ident.Subject != "":
		return models.SourceHuman
	case ident != nil && ident.ClientID != "":
		return models.SourceService
	case authEnabled:
		return models.SourceAnonymous
	default:
		return models.SourceUnknown
	}
}

// ValidatePagination rejects out-of-range values instead of clamping
// them.
func ValidatePagination(page, pageSize int) error {
	if page < 1 || pageSize < MinPageSize || pageSize > MaxPageSize {
		return ErrInvalidPagination
	}
	return nil
}
