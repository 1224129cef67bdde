package db

import (
	"errors"
	"net/http"
	"testing"
)

func TestHealthStatus_Healthy(t *testing.T) {
	stats := &PoolStats{TotalConns: 4, IdleConns: 2, MaxConns: 10, Healthy: true}

	code, body := healthStatus(stats, nil)

	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", body["status"])
	}
	if _, hasErr := body["error"]; hasErr {
		t.Error("healthy response must not carry an error field")
	}
}

func TestHealthStatus_PingFailure(t *testing.T) {
	stats := &PoolStats{TotalConns: 4, Healthy: true}

	code, body := healthStatus(stats, errors.New("connection refused"))

	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("expected status unhealthy, got %v", body["status"])
	}
	if body["error"] != "connection refused" {
		t.Errorf("expected ping error in body, got %v", body["error"])
	}
	if stats.Healthy {
		t.Error("a failed ping must mark the pool unhealthy regardless of counters")
	}
}

func TestHealthStatus_EmptyPoolStillHealthyWhenPingSucceeds(t *testing.T) {
	// TotalConns can be zero right after startup; the ping is authoritative.
	stats := &PoolStats{TotalConns: 0, MaxConns: 10, Healthy: false}

	code, _ := healthStatus(stats, nil)
	if code != http.StatusOK {
		t.Errorf("expected 200 when ping succeeds, got %d", code)
	}
}
