package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxwizz/internal/services"
	"taxwizz/pkg/contracts/domain"
)

func TestNotificationsEndpoint(t *testing.T) {
	fx := newHandlerFixture(t)
	service := services.NewNotificationService(fx.activities, testLogger())
	h := NewNotificationHandler(service, testErrorHandler(), testLogger())

	fx.activities.Record(testUser.Username, domain.Activity{Type: domain.ActivityConversion, Message: "Converted statement.xlsx"})
	fx.activities.Record(testUser.Username, domain.Activity{Type: domain.ActivityError, Message: "Conversion failed"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := do(http.HandlerFunc(h.List), r)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, domain.NotifyError, resp.Notifications[0].Type)
	assert.Equal(t, domain.NotifySuccess, resp.Notifications[1].Type)
	assert.Equal(t, "Conversion complete", resp.Notifications[1].Title)
}

func TestNotificationsEndpoint_Empty(t *testing.T) {
	fx := newHandlerFixture(t)
	service := services.NewNotificationService(fx.activities, testLogger())
	h := NewNotificationHandler(service, testErrorHandler(), testLogger())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := do(http.HandlerFunc(h.List), r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notifications":[]}`, w.Body.String())
}
