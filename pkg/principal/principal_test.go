package principal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fedecoop/padron/pkg/domain"
)

func TestHasRole(t *testing.T) {
	testCases := []struct {
		name      string
		principal *Principal
		required  Role
		want      bool
	}{
		{"admin satisfies admin", &Principal{Role: RoleAdmin}, RoleAdmin, true},
		{"admin satisfies reader", &Principal{Role: RoleAdmin}, RoleReader, true},
		{"operator satisfies operator", &Principal{Role: RoleOperator}, RoleOperator, true},
		{"operator denied admin", &Principal{Role: RoleOperator}, RoleAdmin, false},
		{"reader denied operator", &Principal{Role: RoleReader}, RoleOperator, false},
		{"unknown role denied", &Principal{Role: "superuser"}, RoleReader, false},
		{"nil principal denied", nil, RoleReader, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.principal.HasRole(tc.required))
		})
	}
}

func TestRequireRole(t *testing.T) {
	p := &Principal{Role: RoleOperator}
	assert.NoError(t, p.RequireRole(RoleReader))

	err := p.RequireRole(RoleAdmin)
	assert.True(t, domain.IsAccessDenied(err), "got %v", err)
}

func TestContextRoundTrip(t *testing.T) {
	p := &Principal{ID: "u1", Email: "op@example.test", Role: RoleOperator}
	ctx := WithContext(context.Background(), p)

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, p, got)
}

func TestFromContextAnonymous(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	// A stored nil pointer is still anonymous.
	_, ok = FromContext(WithContext(context.Background(), nil))
	assert.False(t, ok)
}
