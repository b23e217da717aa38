package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jossiefancies/storefront/internal/infrastructure/persistence"
	"github.com/jossiefancies/storefront/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestSystemHandler(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		status   int
		health   string
		database string
	}{
		{name: "healthy", status: http.StatusOK, health: "healthy", database: "ok"},
		{name: "database down", pingErr: errors.New("connection refused"), status: http.StatusServiceUnavailable, health: "unhealthy", database: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(fakePinger{err: tt.pingErr}, "Jossie Fancies")
			r := testRouter()
			r.GET("/health", h.Health)

			w := testutil.Do(t, r, testutil.Request{Path: "/health"})
			require.Equal(t, tt.status, w.Code)
			body := testutil.JSONResponse(t, w)
			assert.Equal(t, tt.health, body["status"])
			assert.Equal(t, tt.database, body["database"])
			assert.NotEmpty(t, body["time"])
		})
	}

	t.Run("info", func(t *testing.T) {
		h := NewSystemHandler(fakePinger{}, "Jossie Fancies")
		r := testRouter()
		r.GET("/info", h.Info)

		w := testutil.Do(t, r, testutil.Request{Path: "/info"})
		require.Equal(t, http.StatusOK, w.Code)
		data := testutil.Data(t, w)
		assert.Equal(t, "Jossie Fancies", data["name"])
		assert.Contains(t, data["go_version"], "go")
		assert.NotContains(t, data, "db_pool")
	})

	t.Run("info reports the sqlite pool", func(t *testing.T) {
		db := persistence.NewDatabaseFromGorm(testutil.NewSQLiteDB(t))
		h := NewSystemHandler(db, "Jossie Fancies")
		r := testRouter()
		r.GET("/info", h.Info)

		w := testutil.Do(t, r, testutil.Request{Path: "/info"})
		require.Equal(t, http.StatusOK, w.Code)
		pool, ok := testutil.Data(t, w)["db_pool"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, pool, "open")
	})
}
