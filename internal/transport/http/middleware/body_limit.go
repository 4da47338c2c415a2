package middleware

import "net/http"

// BodyLimit caps mutation payloads; compute requests are small and anything
// larger is rejected before JSON decoding.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
