package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/clamcard/internal/domain"
)

func TestStation_Same(t *testing.T) {
	id := uuid.New()
	a := &domain.Station{ID: id, Name: "Asterisk"}
	aCopy := &domain.Station{ID: id, Name: "Asterisk (renamed)"}
	b := &domain.Station{ID: uuid.New(), Name: "Asterisk"}
	anon1 := &domain.Station{Name: "Barbican"}
	anon2 := &domain.Station{Name: "Barbican"}

	assert.True(t, a.Same(aCopy), "same id, different name")
	assert.False(t, a.Same(b), "same name, different id")
	assert.True(t, anon1.Same(anon1), "no id, same pointer")
	assert.False(t, anon1.Same(anon2), "no id, different pointers")
	assert.False(t, a.Same(nil))
	assert.True(t, (*domain.Station)(nil).Same(nil))
}

func TestNewPaginationParams(t *testing.T) {
	ptr := func(n int) *int { return &n }

	tests := []struct {
		name        string
		page, limit *int
		want        domain.PaginationParams
		wantOffset  int
	}{
		{"defaults", nil, nil, domain.PaginationParams{Page: 1, Limit: 20}, 0},
		{"explicit", ptr(3), ptr(10), domain.PaginationParams{Page: 3, Limit: 10}, 20},
		{"non-positive falls back", ptr(0), ptr(-5), domain.PaginationParams{Page: 1, Limit: 20}, 0},
		{"limit capped", ptr(2), ptr(1000), domain.PaginationParams{Page: 2, Limit: 100}, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.NewPaginationParams(tc.page, tc.limit)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOffset, got.Offset())
		})
	}
}
