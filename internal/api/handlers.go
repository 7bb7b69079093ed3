package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vendcore/vendcore/internal/auth"
	"github.com/vendcore/vendcore/internal/catalog"
	"github.com/vendcore/vendcore/internal/domain"
	"github.com/vendcore/vendcore/internal/engine"
	"github.com/vendcore/vendcore/internal/ledger"
	"github.com/vendcore/vendcore/internal/store"
)

type Handler struct {
	store      store.Store
	ledger     *ledger.Ledger
	catalog    *catalog.Catalog
	engine     *engine.Engine
	tokens     *auth.Tokens
	bcryptCost int
	log        zerolog.Logger
}

func NewHandler(s store.Store, l *ledger.Ledger, c *catalog.Catalog, e *engine.Engine, t *auth.Tokens, bcryptCost int, log zerolog.Logger) *Handler {
	return &Handler{store: s, ledger: l, catalog: c, engine: e, tokens: t, bcryptCost: bcryptCost, log: log}
}

// Routes builds the full router: public endpoints plus the token-protected
// vending operations.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(RequestLogger(h.log))
	apiV1.HandleFunc("/users", h.RegisterHandler).Methods("POST")
	apiV1.HandleFunc("/users/login", h.LoginHandler).Methods("POST")
	apiV1.HandleFunc("/products", h.ListProductsHandler).Methods("GET")
	apiV1.HandleFunc("/products/{id}", h.GetProductHandler).Methods("GET")

	authed := apiV1.NewRoute().Subrouter()
	authed.Use(auth.Middleware(h.tokens))
	authed.HandleFunc("/users/me", h.MeHandler).Methods("GET")
	authed.HandleFunc("/deposit", h.DepositHandler).Methods("POST")
	authed.HandleFunc("/reset", h.ResetHandler).Methods("POST")
	authed.HandleFunc("/buy", h.BuyHandler).Methods("POST")
	authed.HandleFunc("/products", h.CreateProductHandler).Methods("POST")
	authed.HandleFunc("/products/{id}", h.UpdateProductHandler).Methods("PUT")
	authed.HandleFunc("/products/{id}", h.DeleteProductHandler).Methods("DELETE")
	authed.HandleFunc("/products/{id}/restock", h.RestockHandler).Methods("POST")

	return r
}

// identity fetches the verified principal injected by the auth middleware.
// A missing identity means the route was wired outside the authed subrouter;
// answer 401 rather than dereferencing nil.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	}
	return id, ok
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Username and password required")
		return
	}
	if !req.Role.Valid() {
		respondWithError(w, http.StatusBadRequest, `Role must be "buyer" or "seller"`)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "System error creating account")
		return
	}
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Balance:      0,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateAccount(r.Context(), account); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	accountsCreated.WithLabelValues(string(req.Role)).Inc()
	respondWithJSON(w, http.StatusCreated, account)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	account, err := h.store.GetAccountByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(account.PasswordHash, req.Password) {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(account.ID, account.Role)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Token issuance failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"username": account.Username,
		"token":    token,
	})
}

func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	account, err := h.store.GetAccount(r.Context(), id.AccountID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

type depositRequest struct {
	Coin int64 `json:"coin"`
}

func (h *Handler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/deposit"))
	defer timer.ObserveDuration()

	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	balance, err := h.ledger.Deposit(r.Context(), id.AccountID, req.Coin)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	coinsDeposited.Add(float64(req.Coin))
	respondWithJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	returned, change, err := h.ledger.Reset(r.Context(), id.AccountID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"returned": returned,
		"change":   change,
		"balance":  0,
	})
}

type buyRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

func (h *Handler) BuyHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/buy"))
	defer timer.ObserveDuration()

	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Quantity <= 0 {
		respondWithError(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}

	receipt, err := h.engine.Purchase(r.Context(), id.AccountID, req.ProductID, req.Quantity)
	if err != nil {
		purchasesTotal.WithLabelValues("rejected").Inc()
		h.respondDomainError(w, r, err)
		return
	}

	purchasesTotal.WithLabelValues("settled").Inc()
	amountSpent.Add(float64(receipt.AmountSpent))
	respondWithJSON(w, http.StatusOK, receipt)
}

type productRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
}

func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Name required")
		return
	}
	if req.Stock < 0 {
		respondWithError(w, http.StatusBadRequest, "Stock must be non-negative")
		return
	}

	product, err := h.catalog.Create(r.Context(), id.AccountID, req.Name, req.Price, req.Stock)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	product, err := h.catalog.Get(r.Context(), productID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	product, err := h.catalog.Update(r.Context(), id.AccountID, productID, req.Name, req.Price)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.catalog.Delete(r.Context(), id.AccountID, productID); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type restockRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) RestockHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Quantity <= 0 {
		respondWithError(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}

	product, err := h.catalog.Restock(r.Context(), id.AccountID, productID, req.Quantity)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// respondDomainError maps core errors onto the external contract the original
// machine exposed: role violations 401, ownership 403, business rule
// rejections 400, missing records 404.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRole):
		respondWithError(w, http.StatusUnauthorized, "Operation not permitted for your role")
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "You must be the product's creator")
	case errors.Is(err, domain.ErrInvalidCoin):
		respondWithError(w, http.StatusBadRequest, "Coin must be one of 5, 10, 20, 50, 100")
	case errors.Is(err, domain.ErrInvalidPrice):
		respondWithError(w, http.StatusBadRequest, "Price must be a positive multiple of 5")
	case errors.Is(err, domain.ErrInsufficientStock):
		respondWithError(w, http.StatusBadRequest, "Not enough stock available")
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondWithError(w, http.StatusBadRequest, "Not enough money on your deposit")
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, domain.ErrUsernameTaken):
		respondWithError(w, http.StatusConflict, "Username already taken")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
