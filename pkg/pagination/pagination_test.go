package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"backend/pkg/pagination"
)

func parseQuery(t *testing.T, query string) pagination.Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return pagination.Parse(c)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"limit clamped to max", "limit=500", 1, 100, 0},
		{"negative page falls back", "page=-2", 1, 20, 0},
		{"zero limit falls back", "limit=0", 1, 20, 0},
		{"malformed values fall back", "page=abc&limit=xyz", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := parseQuery(t, tt.query)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	p := pagination.Params{Page: 1, Limit: 20}
	assert.Equal(t, 0, p.PageCount(0))
	assert.Equal(t, 1, p.PageCount(1))
	assert.Equal(t, 1, p.PageCount(20))
	assert.Equal(t, 2, p.PageCount(21))
	assert.Equal(t, 5, p.PageCount(100))
}
