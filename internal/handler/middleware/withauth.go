package middleware

import (
	"fmt"
	"github.com/dgrijalva/jwt-go"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/respond"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"net/http"
	"strconv"
	"strings"
)

// WithAuth verifies the bearer token and exposes its subject and admin flag
// as the User-ID and User-Admin headers. Client supplied values of those
// headers are always discarded.
func WithAuth(privateKey string, disabledURLs []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(respond.UserIDHeader)
			r.Header.Del(respond.UserAdminHeader)

			for _, ignore := range disabledURLs {
				if strings.HasSuffix(r.URL.Path, ignore) {
					next.ServeHTTP(w, r)
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.Log.Warn("unauthorized request", logger.String("url", r.RequestURI))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			var claims dto.Claims
			_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(privateKey), nil
			})
			if err != nil || claims.Subject == "" {
				logger.Log.Warn("unauthorized request", logger.String("url", r.RequestURI), logger.Error(err))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			r.Header.Set(respond.UserIDHeader, claims.Subject)
			r.Header.Set(respond.UserAdminHeader, strconv.FormatBool(claims.Admin))

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin lets through only requests whose token carries the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(respond.UserAdminHeader) != "true" {
			logger.Log.Warn("admin route refused",
				logger.String("url", r.RequestURI),
				logger.String("user_id", r.Header.Get(respond.UserIDHeader)))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
