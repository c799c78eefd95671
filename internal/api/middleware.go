package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by withRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID keeps a client supplied X-Request-Id or assigns a UUID, and
// echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// accessEntry is one line of the access log.
type accessEntry struct {
	Time       string `json:"ts"`
	RequestID  string `json:"request_id"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	Bytes      int    `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
	Panic      string `json:"panic,omitempty"`
}

// withAccessLog writes one JSON line per request to logger. A panic in next
// is answered with the 500 envelope and noted on the same line.
func withAccessLog(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rw := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				entry := accessEntry{
					Time:      started.UTC().Format(time.RFC3339),
					RequestID: RequestIDFromContext(r.Context()),
					Method:    r.Method,
					Path:      r.URL.Path,
				}
				if p := recover(); p != nil {
					entry.Panic = fmt.Sprint(p)
					log.Printf("[error] panic %s %s: %v\n%s", r.Method, r.URL.Path, p, debug.Stack())
					if !rw.wroteHeader {
						writeErr(rw, http.StatusInternalServerError, "internal error")
					}
				}
				entry.Status = rw.status
				entry.Bytes = rw.bytes
				entry.DurationMS = time.Since(started).Milliseconds()

				line, err := json.Marshal(entry)
				if err != nil {
					log.Printf("[warn] access log: %v", err)
					return
				}
				logger.Println(string(line))
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseRecorder) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}
