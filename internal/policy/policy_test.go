package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
)

func TestEvaluate(t *testing.T) {
	owned := &models.Link{Code: "abc123", CreatedByUserID: "u1"}
	unowned := &models.Link{Code: "def456"}

	tests := []struct {
		name        string
		rec         *models.Link
		authEnabled bool
		ident       *auth.Identity
		want        Tier
	}{
		{
			name:        "auth disabled gives full to anonymous",
			rec:         owned,
			authEnabled: false,
			ident:       nil,
			want:        TierFull,
		},
		{
			name:        "auth disabled gives full to anyone",
			rec:         owned,
			authEnabled: false,
			ident:       &auth.Identity{Subject: "u2"},
			want:        TierFull,
		},
		{
			name:        "anonymous caller gets public",
			rec:         owned,
			authEnabled: true,
			ident:       nil,
			want:        TierPublic,
		},
		{
			name:        "owner gets full",
			rec:         owned,
			authEnabled: true,
			ident:       &auth.Identity{Subject: "u1"},
			want:        TierFull,
		},
		{
			name:        "authenticated non-owner gets public",
			rec:         owned,
			authEnabled: true,
			ident:       &auth.Identity{Subject: "u2"},
			want:        TierPublic,
		},
		{
			name:        "unclaimed record stays public for authenticated callers",
			rec:         unowned,
			authEnabled: true,
			ident:       &auth.Identity{Subject: "u1"},
			want:        TierPublic,
		},
		{
			name:        "empty subject never matches unclaimed record",
			rec:         unowned,
			authEnabled: true,
			ident:       &auth.Identity{ClientID: "svc"},
			want:        TierPublic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.rec, tt.authEnabled, tt.ident))
		})
	}
}

func TestIsOwner(t *testing.T) {
	owned := &models.Link{CreatedByUserID: "u1"}
	unowned := &models.Link{}

	assert.True(t, IsOwner(owned, &auth.Identity{Subject: "u1"}))
	assert.False(t, IsOwner(owned, &auth.Identity{Subject: "u2"}))
	assert.False(t, IsOwner(owned, nil))
	assert.False(t, IsOwner(unowned, &auth.Identity{Subject: "u1"}))
	assert.False(t, IsOwner(unowned, &auth.Identity{ClientID: "svc"}))
}

func TestDeriveSourceType(t *testing.T) {
	tests := []struct {
		name        string
		authEnabled bool
		ident       *auth.Identity
		want        models.SourceType
	}{
		{"subject means human", true, &auth.Identity{Subject: "u1", ClientID: "web"}, models.SourceHuman},
		{"client only means service", true, &auth.Identity{ClientID: "cron"}, models.SourceService},
		{"no credential under auth means anonymous", true, nil, models.SourceAnonymous},
		{"auth disabled means unknown", false, nil, models.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveSourceType(tt.authEnabled, tt.ident))
		})
	}
}

func TestValidatePagination(t *testing.T) {
	assert.NoError(t, ValidatePagination(1, 1))
	assert.NoError(t, ValidatePagination(1, 50))
	assert.NoError(t, ValidatePagination(100, 10))

	assert.ErrorIs(t, ValidatePagination(0, 10), ErrInvalidPagination)
	assert.ErrorIs(t, ValidatePagination(-1, 10), ErrInvalidPagination)
	assert.ErrorIs(t, ValidatePagination(1, 0), ErrInvalidPagination)
	assert.ErrorIs(t, ValidatePagination(1, 51), ErrInvalidPagination)
}
