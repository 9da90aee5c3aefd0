package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stok-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestBuildLogMarshalsSnapshots(t *testing.T) {
	ctx := WithClientID(context.Background(), "tarayici-7")

	l := BuildLog(ctx, LogOptions{
		EntityType:  EntityStock,
		EntityID:    "abc",
		Action:      models.AuditActionUpdate,
		Description: "Stok güncellendi: Üre",
		Before:      map[string]any{"name": "Ure"},
		After:       map[string]any{"name": "Üre"},
	})

	require.Equal(t, "tarayici-7", l.ClientID)
	require.Equal(t, models.AuditActionUpdate, l.Action)
	require.JSONEq(t, `{"name":"Ure"}`, l.BeforeData)
	require.JSONEq(t, `{"name":"Üre"}`, l.AfterData)
}

func TestBuildLogUsesJSONNullForMissingSnapshots(t *testing.T) {
	l := BuildLog(context.Background(), LogOptions{Action: models.AuditActionBulkDelete})

	require.Equal(t, "null", l.BeforeData)
	require.Equal(t, "null", l.AfterData)
	require.Empty(t, l.ClientID)
}

type fakeLister struct {
	got  ListOptions
	logs []models.AuditLog
	err  error
}

func (f *fakeLister) List(_ context.Context, opts ListOptions) ([]models.AuditLog, error) {
	f.got = opts
	return f.logs, f.err
}

func TestListAuditLogsHandler(t *testing.T) {
	lister := &fakeLister{logs: []models.AuditLog{{
		ID:         1,
		CreatedAt:  time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		EntityType: EntityStock,
		Action:     models.AuditActionBulkReplace,
		BeforeData: "null",
		AfterData:  "null",
	}}}
	app := fiber.New()
	app.Get("/audit-logs", ListAuditLogsHandler(lister))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs?entity_type=stock&limit=9999", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, ListOptions{EntityType: "stock", Limit: maxListLimit}, lister.got)

	var body []AuditLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	require.Equal(t, "2026-10-19 09:30:00", body[0].CreatedAt)
	require.Equal(t, models.AuditActionBulkReplace, body[0].Action)
}

func TestListAuditLogsHandlerErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/audit-logs", ListAuditLogsHandler(&fakeLister{err: errors.New("db down")}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs?limit=abc", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
