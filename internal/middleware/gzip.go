package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// GzipMiddleware transparently inflates gzip request bodies and
// compresses JSON and HTML responses for clients that accept gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gzReader, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "Invalid gzip body", http.StatusBadRequest)
				return
			}
			defer gzReader.Close()
			r.Body = gzReader
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gzWriter := gzip.NewWriter(w)

		grw := &gzipResponseWriter{ResponseWriter: w, gz: gzWriter}
		defer grw.close()

		next.ServeHTTP(grw, r)
	})
}

// gzipResponseWriter decides on the first write whether the response is
// worth compressing, based on its Content-Type.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz      *gzip.Writer
	decided bool
	passthr bool
}

func (grw *gzipResponseWriter) WriteHeader(statusCode int) {
	grw.decide()
	grw.ResponseWriter.WriteHeader(statusCode)
}

func (grw *gzipResponseWriter) Write(b []byte) (int, error) {
	grw.decide()
	if grw.passthr {
		return grw.ResponseWriter.Write(b)
	}
	return grw.gz.Write(b)
}

func (grw *gzipResponseWriter) decide() {
	if grw.decided {
		return
	}
	grw.decided = true

	contentType := grw.Header().Get("Content-Type")
	if strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "text/html") {
		grw.Header().Set("Content-Encoding", "gzip")
		return
	}
	grw.passthr = true
}

func (grw *gzipResponseWriter) close() {
	if grw.passthr || !grw.decided {
		return
	}
	grw.gz.Close()
}

var _ io.Writer = (*gzipResponseWriter)(nil)
