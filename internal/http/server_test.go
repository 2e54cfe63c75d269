package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/lumenlabs/creatorchat-backend/internal/http/handlers"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

func TestServerServesConfiguredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("error")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	srv := NewServer(RouterConfig{
		Log:           log,
		HealthHandler: httpH.NewHealthHandler(),
	})
	if srv.Engine == nil {
		t.Fatal("server built without an engine")
	}

	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d, want 200", w.Code)
	}
}

// Handlers left nil in the config must not register routes.
func TestServerSkipsUnconfiguredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("error")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	srv := NewServer(RouterConfig{Log: log})
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unregistered route status = %d, want 404", w.Code)
	}
}
