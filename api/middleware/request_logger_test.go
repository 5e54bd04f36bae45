// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakepool/log"
)

// mockLogger records the context of info logs
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger                    { return m }
func (m *mockLogger) New(_ ...any) log.Logger                     { return m }
func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any)        {}
func (m *mockLogger) Trace(_ string, _ ...any)                    {}
func (m *mockLogger) Debug(_ string, _ ...any)                    {}
func (m *mockLogger) Error(_ string, _ ...any)                    {}
func (m *mockLogger) Crit(_ string, _ ...any)                     {}
func (m *mockLogger) Write(_ slog.Level, _ string, _ ...any)      {}
func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (m *mockLogger) Handler() slog.Handler                       { return nil }
func (m *mockLogger) Warn(_ string, ctx ...any)                   { m.loggedData = append(m.loggedData, ctx...) }
func (m *mockLogger) Info(_ string, ctx ...any)                   { m.loggedData = append(m.loggedData, ctx...) }

func TestRequestLoggerHandler(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		threshold time.Duration
		delay     time.Duration
		shouldLog bool
	}{
		{"enabled", true, 0, 0, true},
		{"disabled", false, 0, 0, false},
		{"disabled fast request", false, time.Hour, 0, false},
		{"disabled slow request", false, time.Millisecond, 20 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			enabled := &atomic.Bool{}
			enabled.Store(tt.enabled)

			var body string
			handler := RequestLoggerMiddleware(logger, enabled, tt.threshold)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					time.Sleep(tt.delay)
					data, _ := io.ReadAll(r.Body)
					body = string(data)
					w.WriteHeader(http.StatusCreated)
				}))

			req := httptest.NewRequest(http.MethodPost, "/pools", strings.NewReader(`{"caller":"0x01"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusCreated, rr.Code)
			assert.Equal(t, `{"caller":"0x01"}`, body, "handler still reads the body")

			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "URI")
			assert.Contains(t, logger.loggedData, "/pools")
			assert.Contains(t, logger.loggedData, http.StatusCreated)
			assert.Contains(t, logger.loggedData, `{"caller":"0x01"}`)
		})
	}
}
