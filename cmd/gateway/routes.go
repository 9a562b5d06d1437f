package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"google.golang.org/grpc"

	authgrpc "github.com/dwikikusuma/storefront/internal/auth/grpc"
	cartgrpc "github.com/dwikikusuma/storefront/internal/cart/grpc"
	cgrpc "github.com/dwikikusuma/storefront/internal/catalog/grpc"
	checkoutgrpc "github.com/dwikikusuma/storefront/internal/checkout/grpc"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("took", time.Since(start)),
				slog.String("request_id", requestID(r.Context())),
			)
		})
	}
}

type handlers struct {
	cart     *cartgrpc.Client
	catalog  *cgrpc.Client
	checkout *checkoutgrpc.Client
	auth     *authgrpc.Client
}

func newRouter(log *slog.Logger, cc grpc.ClientConnInterface) http.Handler {
	h := &handlers{
		cart:     cartgrpc.NewClient(cc),
		catalog:  cgrpc.NewClient(cc),
		checkout: checkoutgrpc.NewClient(cc),
		auth:     authgrpc.NewClient(cc),
	}

	r := chi.NewRouter()
	r.Use(withRequestID, accessLog(log), middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/v1", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)

		r.Get("/cart", h.getCart)
		r.Delete("/cart", h.clearCart)
		r.Post("/cart/items", h.addItem)
		r.Get("/cart/items/{productID}", h.isInCart)
		r.Patch("/cart/items/{productID}", h.setQuantity)
		r.Delete("/cart/items/{productID}", h.removeItem)

		r.Get("/checkout/quote", h.quote)

		r.Post("/auth/login", h.login)
		r.Post("/auth/register", h.register)
		r.Post("/auth/logout", h.logout)
		r.Get("/auth/me", h.whoami)
	})
	return r
}

// respond writes out, or the mapped gRPC error.
func respond[T any](w http.ResponseWriter, r *http.Request, status int, out *T, err error) {
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, out)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body", Code: "INVALID_ARGUMENT", Request: requestID(r.Context())})
		return false
	}
	return true
}

func wantWait(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}

func (h *handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &cgrpc.ListProductsRequest{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		SortBy:   q.Get("sort"),
	}
	req.Featured, _ = strconv.ParseBool(q.Get("featured"))
	if v, err := strconv.ParseFloat(q.Get("rating"), 64); err == nil {
		req.MinRating = v
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		req.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		req.MaxPrice = &v
	}

	out, err := h.catalog.ListProducts(r.Context(), req)
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.GetProduct(r.Context(), &cgrpc.GetProductRequest{ID: chi.URLParam(r, "id")})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) getCart(w http.ResponseWriter, r *http.Request) {
	out, err := h.cart.GetCart(r.Context())
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) clearCart(w http.ResponseWriter, r *http.Request) {
	out, err := h.cart.ClearCart(r.Context(), &cartgrpc.ClearCartRequest{Wait: wantWait(r)})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) addItem(w http.ResponseWriter, r *http.Request) {
	var req cartgrpc.AddItemRequest
	if !decode(w, r, &req) {
		return
	}
	req.Wait = req.Wait || wantWait(r)
	out, err := h.cart.AddItem(r.Context(), &req)
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) isInCart(w http.ResponseWriter, r *http.Request) {
	out, err := h.cart.IsInCart(r.Context(), &cartgrpc.ProductRequest{ProductID: chi.URLParam(r, "productID")})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &body) {
		return
	}
	out, err := h.cart.SetItemQuantity(r.Context(), &cartgrpc.SetItemQuantityRequest{
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  body.Quantity,
		Wait:      wantWait(r),
	})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) removeItem(w http.ResponseWriter, r *http.Request) {
	out, err := h.cart.RemoveItem(r.Context(), &cartgrpc.ProductRequest{ProductID: chi.URLParam(r, "productID"), Wait: wantWait(r)})
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) quote(w http.ResponseWriter, r *http.Request) {
	out, err := h.checkout.Quote(r.Context())
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req authgrpc.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.auth.Login(r.Context(), &req)
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req authgrpc.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.auth.Register(r.Context(), &req)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	out, err := h.auth.Logout(r.Context())
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) whoami(w http.ResponseWriter, r *http.Request) {
	out, err := h.auth.Whoami(r.Context())
	respond(w, r, http.StatusOK, out, err)
}
