package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhngo/storefront/internal/auth"
	"github.com/minhngo/storefront/internal/middleware"
)

// NewRouter builds the route table. Cart routes run under the session
// middleware with optional auth; merge, logout and me require a valid
// bearer token.
func NewRouter(jwtManager *auth.JWTManager, authH *AuthHandler, cartH *CartHandler, brandH *BrandHandler, healthH *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	optional := middleware.OptionalAuth(jwtManager)
	required := middleware.RequireAuth(jwtManager)
	cartRoute := func(h http.HandlerFunc) http.Handler {
		return middleware.Session(optional(h))
	}

	mux.Handle("GET /api/cart", cartRoute(cartH.List))
	mux.Handle("POST /api/cart", cartRoute(cartH.Add))
	mux.Handle("POST /api/cart/items", cartRoute(cartH.Add))
	mux.Handle("PUT /api/cart/{id}", cartRoute(cartH.Update))
	mux.Handle("DELETE /api/cart/{id}", cartRoute(cartH.Remove))
	mux.Handle("DELETE /api/cart", cartRoute(cartH.Clear))
	mux.Handle("POST /api/cart/merge", required(http.HandlerFunc(cartH.Merge)))

	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.Handle("POST /api/auth/logout", required(http.HandlerFunc(authH.Logout)))
	mux.Handle("GET /api/auth/me", required(http.HandlerFunc(authH.Me)))

	mux.HandleFunc("GET /api/brands", brandH.List)
	mux.HandleFunc("GET /api/brands/{id}", brandH.Get)

	mux.HandleFunc("GET /api/health", healthH.Check)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
