package middleware

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
)

// minGzipBytes is the smallest body worth compressing
const minGzipBytes = 512

var gzipWriters = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, 5)
		return gz
	},
}

// ResponseOptimization buffers each response, then:
//   - gives successful GETs an ETag derived from the body and the caller's
//     Authorization header, answering a matching If-None-Match with 304
//   - gzips bodies of at least minGzipBytes for clients that accept it
//
// Responses vary by principal, so every response carries
// Vary: Authorization, Accept-Encoding.
func ResponseOptimization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &bufferedResponse{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h := w.Header()
		h.Add("Vary", "Authorization")
		h.Add("Vary", "Accept-Encoding")
		body := rec.body.Bytes()

		if r.Method == http.MethodGet && rec.status == http.StatusOK {
			etag := entityTag(r.Header.Get("Authorization"), body)
			h.Set("ETag", etag)
			h.Set("Cache-Control", "private, no-cache")
			if etagMatches(r.Header.Get("If-None-Match"), etag) {
				h.Del("Content-Length")
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		if len(body) >= minGzipBytes && acceptsGzip(r) && h.Get("Content-Encoding") == "" {
			h.Set("Content-Encoding", "gzip")
			h.Del("Content-Length")
			w.WriteHeader(rec.status)

			gz := gzipWriters.Get().(*gzip.Writer)
			defer gzipWriters.Put(gz)
			gz.Reset(w)
			gz.Write(body)
			gz.Close()
			return
		}

		w.WriteHeader(rec.status)
		w.Write(body)
	})
}

// bufferedResponse holds the status and body until the handler returns
type bufferedResponse struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.wroteHeader = true
	b.status = status
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}

// entityTag is a strong validator over the caller identity and the body
func entityTag(authorization string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(authorization))
	sum.Write([]byte{0})
	sum.Write(body)
	return `"` + hex.EncodeToString(sum.Sum(nil)[:16]) + `"`
}

// etagMatches applies the weak comparison If-None-Match uses
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}
