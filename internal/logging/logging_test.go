package logging

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"marketplace/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Config
		wantDebug bool
	}{
		{"development defaults to debug", config.Config{Env: "development"}, true},
		{"production defaults to info", config.Config{Env: "production"}, false},
		{"level override", config.Config{Env: "development", LogLevel: "warn"}, false},
		{"bad level falls back to info", config.Config{Env: "development", LogLevel: "loud"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestMiddlewareLogsRenderedStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			return c.Status(http.StatusTeapot).SendString(err.Error())
		},
	})
	app.Use(requestid.New())
	app.Use(Middleware(zap.New(core), false))
	app.Get("/ok", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		path string
		want int64
	}{
		{"/ok", http.StatusOK},
		{"/fail", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != int(tt.want) {
				t.Errorf("response status = %d, want %d", resp.StatusCode, tt.want)
			}

			entries := logs.FilterMessage("http_request").FilterField(zap.String("path", tt.path)).All()
			if len(entries) != 1 {
				t.Fatalf("http_request entries = %d, want 1", len(entries))
			}
			fields := entries[0].ContextMap()
			if fields["status"] != tt.want {
				t.Errorf("logged status = %v, want %d", fields["status"], tt.want)
			}
			if fields["request_id"] == "" || fields["request_id"] == nil {
				t.Error("request_id missing from log line")
			}
		})
	}
}

func TestMiddlewareLogsClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		want       string
	}{
		{"trusted proxy", true, "203.0.113.7"},
		{"untrusted proxy", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			app := fiber.New()
			app.Use(Middleware(zap.New(core), tt.trustProxy))
			app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			resp.Body.Close()

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("http_request entries = %d, want 1", len(entries))
			}
			got := entries[0].ContextMap()["ip"]
			if tt.want == "" {
				if got == "203.0.113.7" || got == "" {
					t.Errorf("logged ip = %v, want the socket address", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("logged ip = %v, want %s", got, tt.want)
			}
		})
	}
}
