package api

import (
	"net/http"
	"strings"
)

// Package-qualified service prefix, as it appears in procedure paths.
const packagePrefix = "/splitledger.v1."

// IsProcedurePath reports whether path addresses one of the RPC services.
func IsProcedurePath(path string) bool {
	return strings.HasPrefix(path, packagePrefix)
}

// serviceMux dispatches a service's procedures by exact path.
type serviceMux map[string]http.Handler

func (m serviceMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := m[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
