package types

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/api/v1/recipes", 1, DefaultPageSize},
		{"explicit", "/api/v1/recipes?page=3&limit=25", 3, 25},
		{"limit capped", "/api/v1/recipes?limit=500", 1, MaxPageSize},
		{"garbage ignored", "/api/v1/recipes?page=abc&limit=-5", 1, DefaultPageSize},
		{"zero page ignored", "/api/v1/recipes?page=0", 1, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			page, limit := PageParams(r)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPageLinks(t *testing.T) {
	t.Run("middle page has both links", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/api/v1/recipes?page=2", nil)
		p := NewPage(r, 25, 2, 10, nil)

		require.NotNil(t, p.Next)
		assert.Equal(t, "http://example.com/api/v1/recipes?page=3", *p.Next)
		require.NotNil(t, p.Previous)
		assert.Equal(t, "http://example.com/api/v1/recipes?page=1", *p.Previous)
	})

	t.Run("first page has no previous", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/api/v1/recipes", nil)
		p := NewPage(r, 25, 1, 10, nil)
		assert.NotNil(t, p.Next)
		assert.Nil(t, p.Previous)
	})

	t.Run("last page has no next", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/api/v1/recipes?page=3", nil)
		p := NewPage(r, 25, 3, 10, nil)
		assert.Nil(t, p.Next)
		assert.NotNil(t, p.Previous)
	})

	t.Run("other query parameters survive", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/api/v1/recipes?tags=dinner&page=1", nil)
		p := NewPage(r, 25, 1, 10, nil)
		require.NotNil(t, p.Next)
		assert.Equal(t, "http://example.com/api/v1/recipes?page=2&tags=dinner", *p.Next)
	})
}
