package auth

import (
	"encoding/base64"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// BasicAuth returns middleware enforcing HTTP Basic authentication against
// creds on every request whose path does not match an exclusion. Missing
// header, non-Basic scheme, undecodable payload, and credential mismatch all
// get the same 401 + challenge treatment; a matching request passes through
// unmodified.
//
// Exclusions are literal paths, or prefixes when they end in "/*"
// (build assets, icons, health probes).
func BasicAuth(creds Credentials, realm string, exclusions []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excluded(r.URL.Path, exclusions) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				challenge(w, realm, "Authentication required")
				return
			}

			username, password, ok := parseBasic(header)
			if !ok {
				challenge(w, realm, "Invalid authentication")
				return
			}

			if !creds.Match(username, password) {
				zap.L().Debug("basic auth rejected", zap.String("path", r.URL.Path))
				challenge(w, realm, "Invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func excluded(path string, exclusions []string) bool {
	for _, e := range exclusions {
		if prefix, found := strings.CutSuffix(e, "/*"); found {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == e {
			return true
		}
	}
	return false
}

// challenge writes the 401 response with the retry-prompting header.
func challenge(w http.ResponseWriter, realm, body string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	http.Error(w, body, http.StatusUnauthorized)
}

// parseBasic extracts the decoded username/password pair from an
// Authorization header value. ok is false for any malformation.
func parseBasic(header string) (username, password string, ok bool) {
	scheme, encoded, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Basic") || encoded == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	username, password, found = strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return username, password, true
}
