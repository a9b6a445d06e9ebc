// Package middleware provides the HTTP middleware for the API server.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmcamacho/auth-portal/internal/txlog"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// Transaction mints a transaction id for each inbound request, threads
// it through the request context, echoes it in the X-Transaction-ID
// header and logs the request and its outcome. The id lives only in
// the request context, so concurrent requests never observe each
// other's ids.
func Transaction(tx *txlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := txlog.NewTransactionID()
			ctx := txlog.WithTransactionID(r.Context(), id)
			w.Header().Set(txlog.TransactionIDHeader, id)

			start := time.Now()
			httpContext := fmt.Sprintf("%s %s | %s", r.Method, r.URL.Path, r.RemoteAddr)
			tx.Event(ctx, txlog.StateStarted, "HttpRequest", r.Method, httpContext, r)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			duration := time.Since(start).Milliseconds()
			state := txlog.StateCompleted
			if rw.statusCode >= 400 {
				state = txlog.StateWarning
			}
			tx.Event(ctx, state, "HttpResponse", r.Method,
				fmt.Sprintf("%s | Status: %d | Duration: %dms", httpContext, rw.statusCode, duration), nil)
		})
	}
}
