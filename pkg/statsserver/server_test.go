package statsserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/chainkv/pkg/config"
	"github.com/cuemby/chainkv/pkg/database"
)

func TestDebugStoreReportsNamespacesAndRootKeys(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New(config.WithPath(dir))
	db, err := database.Connect(*cfg)
	require.NoError(t, err)
	require.NoError(t, db.Create("chain1"))

	s := New(db)
	req := httptest.NewRequest(http.MethodGet, "/debug/store", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "chain1")
}

func TestHealthzServesOK(t *testing.T) {
	s := New(nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
