package http

import (
	"crypto/subtle"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/golang-jwt/jwt/v5"
	"net/http"
	"strings"
)

// authorize accepts either the access key or a bearer token signed with the JWT secret.
// The API is open when neither of them is configured.
func (h Handler) authorize(r *http.Request) error {
	if h.accessKey == "" && len(h.jwtSecret) == 0 {
		return nil
	}
	if h.accessKey != "" && subtle.ConstantTimeCompare([]byte(r.URL.Query().Get("accessKey")), []byte(h.accessKey)) == 1 {
		return nil
	}
	token, ok := bearer(r)
	if !ok || len(h.jwtSecret) == 0 {
		return errors.WrapContext(errtype.ErrUnauthorized, errors.Context{Path: "http.Handler.authorize"})
	}
	_, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return errors.WrapContext(errtype.ErrUnauthorized, errors.Context{
			Path:   "http.Handler.authorize.Parse",
			Params: errors.Params{"reason": err.Error()},
		})
	}
	return nil
}

func bearer(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	v := r.Header.Get("Authorization")
	if len(v) <= len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(v[len(prefix):]), true
}
