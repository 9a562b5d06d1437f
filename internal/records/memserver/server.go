// Package memserver is an in-memory record service speaking the same JSON
// routes as the storefront's backing store. It backs local development and
// the HTTP client tests.
package memserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

const tokenPrefix = "mock-jwt-"

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
	Password string `json:"password,omitempty"`
}

func (u User) public() User {
	u.Password = ""
	return u
}

type Server struct {
	mu        sync.Mutex
	products  []catalogdomain.Product
	users     []User
	cartItems []cartdomain.Record

	fault func(r *http.Request) int
}

func New() *Server {
	return &Server{}
}

func (s *Server) SeedProducts(products ...catalogdomain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
}

func (s *Server) SeedUsers(users ...User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, users...)
}

func (s *Server) SeedCartItems(records ...cartdomain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartItems = append(s.cartItems, records...)
}

// CartItems returns a copy of the stored cart records of userID.
func (s *Server) CartItems(userID string) []cartdomain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []cartdomain.Record
	for _, r := range s.cartItems {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// SetFault installs fn to fail requests: a non-zero return is written as the response status.
func (s *Server) SetFault(fn func(r *http.Request) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.faults)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)

	r.Route("/cartItems", func(r chi.Router) {
		r.Get("/", s.listCartItems)
		r.Post("/", s.createCartItem)
		r.Get("/{id}", s.getCartItem)
		r.Patch("/{id}", s.patchCartItem)
		r.Delete("/{id}", s.deleteCartItem)
	})

	r.Post("/login", s.login)
	r.Post("/register", s.register)
	r.Get("/profile", s.profile)
	return r
}

func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fault := s.fault
		s.mu.Unlock()
		if fault != nil {
			if code := fault(r); code != 0 {
				httpx.WriteError(w, code, http.StatusText(code))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	out := make([]catalogdomain.Product, 0, len(s.products))
	for _, p := range s.products {
		if matchProduct(p, q) {
			out = append(out, p)
		}
	}
	s.mu.Unlock()

	if field := q.Get("_sort"); field != "" {
		desc := q.Get("_order") == "desc"
		sort.SliceStable(out, func(i, j int) bool {
			a, b := sortKey(out[i], field), sortKey(out[j], field)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func matchProduct(p catalogdomain.Product, q map[string][]string) bool {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	if c := get("category"); c != "" && c != p.Category {
		return false
	}
	if get("featured") == "true" && !p.Featured {
		return false
	}
	if v, err := strconv.ParseFloat(get("price_gte"), 64); err == nil && p.Price < v {
		return false
	}
	if v, err := strconv.ParseFloat(get("price_lte"), 64); err == nil && p.Price > v {
		return false
	}
	if v, err := strconv.ParseFloat(get("rating_gte"), 64); err == nil && p.Rating < v {
		return false
	}
	if term := strings.ToLower(get("q")); term != "" {
		hay := strings.ToLower(p.Name + " " + p.Description + " " + p.Category + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func sortKey(p catalogdomain.Product, field string) float64 {
	switch field {
	case "price":
		return p.Price
	case "rating":
		return p.Rating
	default:
		return 0
	}
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			httpx.WriteJSON(w, http.StatusOK, p)
			return
		}
	}
	httpx.WriteJSON(w, http.StatusNotFound, map[string]any{})
}

func (s *Server) listCartItems(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	s.mu.Lock()
	out := make([]cartdomain.Record, 0)
	for _, rec := range s.cartItems {
		if userID == "" || rec.UserID == userID {
			out = append(out, rec)
		}
	}
	s.mu.Unlock()
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) getCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.cartIndexLocked(id); i >= 0 {
		httpx.WriteJSON(w, http.StatusOK, s.cartItems[i])
		return
	}
	httpx.WriteJSON(w, http.StatusNotFound, map[string]any{})
}

func (s *Server) createCartItem(w http.ResponseWriter, r *http.Request) {
	var rec cartdomain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cartIndexLocked(rec.ID) >= 0 {
		httpx.WriteError(w, http.StatusInternalServerError, "Insert failed, duplicate id")
		return
	}
	s.cartItems = append(s.cartItems, rec)
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (s *Server) patchCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndexLocked(id)
	if i < 0 {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	if patch.Quantity != nil {
		s.cartItems[i].Quantity = *patch.Quantity
	}
	httpx.WriteJSON(w, http.StatusOK, s.cartItems[i])
}

func (s *Server) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndexLocked(id)
	if i < 0 {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	s.cartItems = append(s.cartItems[:i], s.cartItems[i+1:]...)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) cartIndexLocked(id string) int {
	for i := range s.cartItems {
		if s.cartItems[i].ID == id {
			return i
		}
	}
	return -1
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != body.Email {
			continue
		}
		if u.Password != body.Password {
			httpx.WriteError(w, http.StatusUnauthorized, "Incorrect password.")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authResponse{User: u.public(), Token: tokenPrefix + u.ID})
		return
	}
	httpx.WriteError(w, http.StatusUnauthorized, "No account found with that email.")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.Email == "" || body.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	if body.Password != body.ConfirmPassword {
		httpx.WriteError(w, http.StatusBadRequest, "Passwords do not match.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == body.Email {
			httpx.WriteError(w, http.StatusConflict, "An account with this email already exists.")
			return
		}
	}
	u := User{
		ID:       "u_" + uuid.NewString(),
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     "customer",
		JoinedAt: time.Now().UTC().Format(time.DateOnly),
	}
	s.users = append(s.users, u)
	httpx.WriteJSON(w, http.StatusCreated, authResponse{User: u.public(), Token: tokenPrefix + u.ID})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if !strings.HasPrefix(token, tokenPrefix) {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := strings.TrimPrefix(token, tokenPrefix)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			httpx.WriteJSON(w, http.StatusOK, u.public())
			return
		}
	}
	httpx.WriteError(w, http.StatusNotFound, "User not found")
}
