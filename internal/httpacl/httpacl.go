// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package httpacl adapts the Authorizer to a net/http middleware usable with
// gorilla/mux routers. It is a thin translation layer only: it builds an
// authorizer.Request from the incoming *http.Request and maps the resulting
// Verdict to an HTTP status code.
package httpacl

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"grimm.is/printgate/internal/authorizer"
	"grimm.is/printgate/internal/location"
)

// NewRouter builds a mux.Router with the Authorizer wired in as a global
// middleware, so every registered route is checked before its handler runs.
func NewRouter(az *authorizer.Authorizer) *mux.Router {
	r := mux.NewRouter()
	r.Use(Middleware(az))
	return r
}

var verbMasks = map[string]location.VerbMask{
	http.MethodOptions: location.VerbOptions,
	http.MethodGet:     location.VerbGet,
	http.MethodHead:    location.VerbHead,
	http.MethodPost:    location.VerbPost,
	http.MethodPut:     location.VerbPut,
	http.MethodDelete:  location.VerbDelete,
	http.MethodTrace:   location.VerbTrace,
}

// Middleware wraps next, rejecting requests the Authorizer denies.
func Middleware(az *authorizer.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := requestFrom(r)

			switch az.Authorize(req) {
			case authorizer.OK:
				next.ServeHTTP(w, r)
			case authorizer.Unauthorized:
				w.Header().Set("WWW-Authenticate", `Basic realm="printgate"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			case authorizer.Forbidden:
				http.Error(w, "Forbidden", http.StatusForbidden)
			case authorizer.UpgradeRequired:
				http.Error(w, "Upgrade Required", http.StatusUpgradeRequired)
			default:
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
		})
	}
}

func requestFrom(r *http.Request) authorizer.Request {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	username, password, hasBasic := r.BasicAuth()
	scheme := ""
	if hasBasic {
		scheme = "Basic"
	} else if auth := r.Header.Get("Authorization"); auth != "" {
		if fields := strings.Fields(auth); len(fields) > 0 {
			scheme = fields[0]
		}
	}

	verb, ok := verbMasks[r.Method]
	if !ok {
		verb = location.VerbAll
	}

	return authorizer.Request{
		Path:     r.URL.Path,
		Verb:     verb,
		VerbName: r.Method,
		PeerIP:   net.ParseIP(host),
		PeerHost: hostnameOf(r),
		TLS:      r.TLS != nil,
		Auth: authorizer.AuthHeader{
			Scheme:   scheme,
			Username: username,
			Password: password,
			Nonce:    r.Header.Get("X-Printgate-Nonce"),
		},
	}
}

// hostnameOf returns the peer address from r.RemoteAddr (port stripped) as
// the peer hostname. No reverse DNS lookup is done and r.Host is not read,
// so Named masks are compared against the textual address.
func hostnameOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
