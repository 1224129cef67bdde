package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)

	called := false
	_, err := runMiddleware(t, RequestTimeout(5*time.Second), req, func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was never reached")
	}
}

func TestRequestTimeout_Returns504OnExpiry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/repair/propose", nil)

	rec, err := runMiddleware(t, RequestTimeout(50*time.Millisecond), req, func(c echo.Context) error {
		// A handler stuck on slow downstream work.
		select {
		case <-time.After(5 * time.Second):
			return c.String(http.StatusOK, "ok")
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	})
	if err != nil {
		t.Fatalf("the 504 is written directly, not returned: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("timeout body is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("timeout body must explain the failure")
	}
}

func TestRequestTimeout_HandlerSeesDeadline(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)

	_, err := runMiddleware(t, RequestTimeout(30*time.Second), req, func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("request context carries no deadline")
		}
		return c.String(http.StatusOK, "ok")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestTimeout_PropagatesHandlerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/123", nil)

	_, err := runMiddleware(t, RequestTimeout(5*time.Second), req, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected the handler's 404 unchanged, got %v", err)
	}
}
