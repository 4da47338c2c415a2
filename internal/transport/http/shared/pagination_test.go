package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Pagination
	}{
		{"defaults", "/stubs", Pagination{Limit: 50, Offset: 0}},
		{"explicit", "/stubs?limit=20&offset=40", Pagination{Limit: 20, Offset: 40}},
		{"clamped to max", "/stubs?limit=9999", Pagination{Limit: 200, Offset: 0}},
		{"garbage ignored", "/stubs?limit=abc&offset=-5", Pagination{Limit: 50, Offset: 0}},
		{"zero limit ignored", "/stubs?limit=0", Pagination{Limit: 50, Offset: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.target, nil)
			assert.Equal(t, tc.want, ParsePagination(r, 50, 200))
		})
	}
}
