package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams(t *testing.T) {
	tests := []struct {
		query      string
		wantOffset int
		wantLimit  int
	}{
		{query: "", wantOffset: 0, wantLimit: 50},
		{query: "offset=20&limit=10", wantOffset: 20, wantLimit: 10},
		{query: "offset=-5", wantOffset: 0, wantLimit: 50},
		{query: "limit=0", wantOffset: 0, wantLimit: 50},
		{query: "limit=500", wantOffset: 0, wantLimit: 50},
		{query: "offset=abc&limit=xyz", wantOffset: 0, wantLimit: 50},
		{query: "limit=200", wantOffset: 0, wantLimit: 200},
	}

	for _, tt := range tests {
		app := fiber.New()
		app.Get("/list", func(c *fiber.Ctx) error {
			offset, limit := paginationParams(c)
			assert.Equal(t, tt.wantOffset, offset, "query %q", tt.query)
			assert.Equal(t, tt.wantLimit, limit, "query %q", tt.query)
			return c.SendStatus(fiber.StatusNoContent)
		})

		req := httptest.NewRequest("GET", "/list?"+tt.query, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01T12:30:00Z", formatTimePtr(&ts))
}
