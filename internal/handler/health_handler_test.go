package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientportal/internal/handler"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(nil, nil)

	r := newRouter(uuid.Nil, http.MethodGet, "/healthz", h.Liveness)
	w := serve(r, jsonRequest(t, http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{"database up", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()
			sqlMock.ExpectPing().WillReturnError(tt.pingErr)

			h := handler.NewHealthHandler(sqlx.NewDb(db, "sqlmock"), nil)
			r := newRouter(uuid.Nil, http.MethodGet, "/readyz", h.Readiness)
			w := serve(r, jsonRequest(t, http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NoError(t, sqlMock.ExpectationsWereMet())
		})
	}
}
