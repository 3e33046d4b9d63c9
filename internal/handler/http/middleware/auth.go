package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts only verified access tokens that name a user. SSE tokens are rejected here.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if tokenType, ok := claims["type"].(string); !ok || tokenType != jwt.TokenTypeAccess {
			response.Unauthorized(w, "Invalid token type")
			return
		}
		if userID, ok := claims["user_id"].(string); !ok || userID == "" {
			response.Unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
