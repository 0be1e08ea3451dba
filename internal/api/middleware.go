// Package api implements the JSON API for journal entries using chi.
package api

import "net/http"

// NoStore marks responses as uncacheable so a reload after a mutation
// always reflects the current set of entries, including through the
// service worker.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
