package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/julienbonastre/plaza-helpers/internal/calculator"
	"github.com/julienbonastre/plaza-helpers/internal/database"
	"github.com/julienbonastre/plaza-helpers/internal/plaza"
	"github.com/julienbonastre/plaza-helpers/internal/sync"
)

var validate = validator.New()

// ClientFactory builds a Plaza client for the credentials of a stored account
type ClientFactory func(creds *database.Credentials) (*plaza.Client, error)

// Options configures a Handler
type Options struct {
	// EncryptionKey decrypts the private keys of stored accounts
	EncryptionKey []byte
	// DefaultClient serves requests that do not select an account. May be nil.
	DefaultClient *plaza.Client
	NewClient     ClientFactory
	// SyncTimeout bounds a single sync run. Zero means no limit.
	SyncTimeout time.Duration
	Logger      *zap.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db            *database.DB
	syncService   *sync.Service
	encKey        []byte
	defaultClient *plaza.Client
	newClient     ClientFactory
	syncTimeout   time.Duration
	logger        *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(db *database.DB, syncService *sync.Service, opts Options) *Handler {
	if opts.NewClient == nil {
		opts.NewClient = func(creds *database.Credentials) (*plaza.Client, error) {
			return plaza.NewClient(plaza.Config{
				PublicKey:  creds.PublicKey,
				PrivateKey: creds.PrivateKey,
				TestMode:   creds.TestMode,
				Logger:     opts.Logger,
			})
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{
		db:            db,
		syncService:   syncService,
		encKey:        opts.EncryptionKey,
		defaultClient: opts.DefaultClient,
		newClient:     opts.NewClient,
		syncTimeout:   opts.SyncTimeout,
		logger:        opts.Logger.Named("handlers"),
	}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HealthCheck)
	mux.HandleFunc("GET /api/accounts", h.GetAccounts)
	mux.HandleFunc("POST /api/accounts", h.CreateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", h.DeleteAccount)
	mux.HandleFunc("GET /api/accounts/{id}/records/{kind}", h.GetStoredRecords)
	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("PUT /api/settings/{key}", h.UpdateSetting)

	mux.HandleFunc("GET /api/orders", h.GetOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/shipments", h.GetShipments)
	mux.HandleFunc("GET /api/returns", h.GetReturnItems)
	mux.HandleFunc("GET /api/inventory", h.GetInventory)
	mux.HandleFunc("GET /api/offers/{ean}", h.GetOffer)
	mux.HandleFunc("GET /api/commission/{ean}", h.GetCommission)
	mux.HandleFunc("GET /api/process-status/{id}", h.GetProcessStatus)
	mux.HandleFunc("GET /api/inbounds", h.GetInbounds)
	mux.HandleFunc("GET /api/inbounds/{id}", h.GetInbound)
	mux.HandleFunc("GET /api/delivery-windows", h.GetDeliveryWindows)

	mux.HandleFunc("POST /api/payout", h.CalculatePayout)
	mux.HandleFunc("POST /api/sync/export", h.SyncExport)
	mux.HandleFunc("POST /api/sync/process-statuses", h.SyncProcessStatuses)
	mux.HandleFunc("GET /api/sync/history", h.GetSyncHistory)

	return mux
}

// JSON response helper
func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// Error response helper
func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// clientError maps a Plaza client error onto an HTTP status
func (h *Handler) clientError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))

	var (
		apiErr       *plaza.APIError
		transportErr *plaza.TransportError
		parseErr     *plaza.ParseError
	)
	switch {
	case plaza.IsRateLimited(err):
		h.errorResponse(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &apiErr):
		h.jsonResponse(w, http.StatusBadGateway, map[string]any{
			"error":      apiErr.Message,
			"code":       apiErr.Code,
			"statusCode": apiErr.StatusCode,
		})
	case errors.As(err, &transportErr):
		h.jsonResponse(w, http.StatusGatewayTimeout, map[string]any{
			"error": err.Error(),
			"code":  transportErr.Code(),
			"kind":  transportErr.Kind.String(),
		})
	case errors.As(err, &parseErr):
		h.errorResponse(w, http.StatusBadGateway, err.Error())
	default:
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

// accountID reads the optional account query parameter. Zero means none.
func accountID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("account")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid account id")
	}
	return id, nil
}

// client resolves the Plaza client of a request: the selected stored account
// or the default client. It writes the error response itself and returns nil
// when no client is available.
func (h *Handler) client(w http.ResponseWriter, r *http.Request) (*plaza.Client, int64) {
	id, err := accountID(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return nil, 0
	}
	if id == 0 {
		if h.defaultClient == nil {
			h.errorResponse(w, http.StatusBadRequest, "No account selected and no default Plaza credentials configured")
			return nil, 0
		}
		return h.defaultClient, 0
	}
	if len(h.encKey) == 0 {
		h.errorResponse(w, http.StatusInternalServerError, "Encryption key not configured")
		return nil, 0
	}

	creds, err := h.db.GetCredentials(id, h.encKey)
	if errors.Is(err, database.ErrAccountNotFound) {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return nil, 0
	}
	if err != nil {
		h.logger.Error("failed to load credentials", zap.Int64("account_id", id), zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return nil, 0
	}

	c, err := h.newClient(creds)
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return nil, 0
	}
	return c, id
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

// HealthCheck returns API health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":     "ok",
		"configured": h.defaultClient != nil,
	}
	if h.defaultClient != nil {
		status["baseUrl"] = h.defaultClient.BaseURL()
		status["testMode"] = h.defaultClient.IsTestMode()
	}
	if err := h.db.Ping(); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
	}
	h.jsonResponse(w, http.StatusOK, status)
}

// GetAccounts returns all stored accounts
func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.db.GetAccounts()
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if accounts == nil {
		accounts = []database.Account{}
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"total":    len(accounts),
	})
}

// CreateAccountRequest is the request body for storing an account
type CreateAccountRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
	PublicKey   string `json:"publicKey" validate:"required"`
	PrivateKey  string `json:"privateKey" validate:"required"`
	TestMode    bool   `json:"testMode"`
}

// CreateAccount stores an account or replaces the keys of an existing one
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if len(h.encKey) == 0 {
		h.errorResponse(w, http.StatusInternalServerError, "Encryption key not configured")
		return
	}

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.db.SaveAccount(req.DisplayName, req.PublicKey, req.PrivateKey, req.TestMode, h.encKey)
	if err != nil {
		h.logger.Error("failed to save account", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("account saved", zap.Int64("account_id", acc.ID), zap.String("environment", acc.Environment))
	h.jsonResponse(w, http.StatusCreated, acc)
}

// DeleteAccount removes an account and its synced data
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid account id")
		return
	}

	err = h.db.DeleteAccount(id)
	if errors.Is(err, database.ErrAccountNotFound) {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetStoredRecords returns what the last syncs stored for an account
func (h *Handler) GetStoredRecords(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid account id")
		return
	}
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		table   string
		records any
	)
	switch r.PathValue("kind") {
	case "orders":
		table = database.TableOrders
		records, err = h.db.GetOrders(id, limit, offset)
	case "shipments":
		table = database.TableShipments
		records, err = h.db.GetShipments(id, limit, offset)
	case "returns":
		table = database.TableReturnItems
		records, err = h.db.GetReturnItems(id, limit, offset)
	case "inventory":
		table = database.TableInventoryOffers
		records, err = h.db.GetInventoryOffers(id, limit, offset)
	case "inbounds":
		table = database.TableInbounds
		records, err = h.db.GetInbounds(id, limit, offset)
	default:
		h.errorResponse(w, http.StatusNotFound, "unknown record kind")
		return
	}
	if err != nil {
		h.logger.Error("failed to load records", zap.String("table", table), zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	total, err := h.db.CountRecords(table, id)
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetSettings returns all settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetAllSettings()
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"settings": settings})
}

// UpdateSetting changes the value of a setting
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key := r.PathValue("key")
	if err := h.db.UpdateSetting(key, req.Value); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// fulfilmentMethod returns the method query parameter or the configured default
func (h *Handler) fulfilmentMethod(r *http.Request) string {
	if m := r.URL.Query().Get("method"); m != "" {
		return m
	}
	m, err := h.db.GetSettingValue(database.SettingFulfilmentMethod, plaza.FulfilmentByRetailer)
	if err != nil {
		h.logger.Warn("failed to read setting", zap.String("key", database.SettingFulfilmentMethod), zap.Error(err))
	}
	return m
}

// GetOrders returns a page of open orders
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	page := queryInt(r, "page", 1)
	orders, err := c.GetOrders(r.Context(), page, h.fulfilmentMethod(r))
	if err != nil {
		h.clientError(w, "get orders", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"orders": orders,
		"page":   page,
		"total":  len(orders),
	})
}

// GetOrder returns a single order
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	order, err := c.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.clientError(w, "get order", err)
		return
	}
	if order == nil {
		h.errorResponse(w, http.StatusNotFound, "Order not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, order)
}

// GetShipments returns a page of shipments
func (h *Handler) GetShipments(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	page := queryInt(r, "page", 1)
	shipments, err := c.GetShipments(r.Context(), page, h.fulfilmentMethod(r), r.URL.Query().Get("order"))
	if err != nil {
		h.clientError(w, "get shipments", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"shipments": shipments,
		"page":      page,
		"total":     len(shipments),
	})
}

// GetReturnItems returns the unhandled returns
func (h *Handler) GetReturnItems(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	items, err := c.GetReturnItems(r.Context())
	if err != nil {
		h.clientError(w, "get return items", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"returns": items,
		"total":   len(items),
	})
}

// GetInventory returns a page of the FBB inventory
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	q := r.URL.Query()
	inv, err := c.GetInventory(r.Context(), plaza.InventoryQuery{
		Page:     queryInt(r, "page", 1),
		Quantity: q.Get("quantity"),
		Stock:    q.Get("stock"),
		State:    q.Get("state"),
		Query:    q.Get("query"),
	})
	if err != nil {
		h.clientError(w, "get inventory", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, inv)
}

// GetOffer returns the seller's offer for an EAN
func (h *Handler) GetOffer(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	offer, err := c.GetSingleOffer(r.Context(), r.PathValue("ean"), r.URL.Query().Get("condition"))
	if err != nil {
		h.clientError(w, "get offer", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, offer)
}

// GetCommission returns the commission bol.com charges for an EAN
func (h *Handler) GetCommission(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	q := r.URL.Query()
	commission, err := c.GetCommission(r.Context(), r.PathValue("ean"), q.Get("condition"), q.Get("price"))
	if err != nil {
		h.clientError(w, "get commission", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, commission)
}

// GetProcessStatus returns the state of an asynchronous job. With an account
// selected, unfinished jobs are stored so a later sync can poll them.
func (h *Handler) GetProcessStatus(w http.ResponseWriter, r *http.Request) {
	c, id := h.client(w, r)
	if c == nil {
		return
	}

	ps, err := c.GetProcessStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		h.clientError(w, "get process status", err)
		return
	}
	if ps.ID == "" {
		ps.ID = r.PathValue("id")
	}
	if id != 0 {
		if err := h.db.SaveProcessStatus(id, ps); err != nil {
			h.logger.Warn("failed to store process status", zap.String("process_status_id", ps.ID), zap.Error(err))
		}
	}
	h.jsonResponse(w, http.StatusOK, ps)
}

// GetInbounds returns a page of FBB inbounds
func (h *Handler) GetInbounds(w http.ResponseWriter, r *http.Request) {
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	list, err := c.GetInboundList(r.Context(), queryInt(r, "page", 1))
	if err != nil {
		h.clientError(w, "get inbounds", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, list)
}

// GetInbound returns a single inbound
func (h *Handler) GetInbound(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid inbound id")
		return
	}
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	inbound, err := c.GetSingleInbound(r.Context(), id)
	if err != nil {
		h.clientError(w, "get inbound", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, inbound)
}

// GetDeliveryWindows returns the time slots available for an inbound
func (h *Handler) GetDeliveryWindows(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	items := queryInt(r, "items", 0)
	if items <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "items must be positive")
		return
	}
	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	slots, err := c.GetDeliveryWindows(r.Context(), date, items)
	if err != nil {
		h.clientError(w, "get delivery windows", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"timeSlots": slots})
}

// PayoutRequest is the request body for the payout calculation
type PayoutRequest struct {
	EAN                 string           `json:"ean" validate:"required,numeric"`
	Condition           string           `json:"condition"`
	Price               decimal.Decimal  `json:"price"`
	Quantity            int              `json:"quantity" validate:"min=0"`
	UnitCost            decimal.Decimal  `json:"unitCost"`
	ShippingCost        decimal.Decimal  `json:"shippingCost"`
	VATPercent          *decimal.Decimal `json:"vatPercent,omitempty"`
	TargetMarginPercent *decimal.Decimal `json:"targetMarginPercent,omitempty"`
}

// PayoutResponse combines the payout with the break-even price
type PayoutResponse struct {
	*calculator.PayoutResult
	Commission     *calculator.Commission `json:"commission"`
	BreakEvenPrice decimal.Decimal        `json:"breakEvenPrice"`
}

// decimalSetting reads a numeric setting, falling back to def
func (h *Handler) decimalSetting(key, def string) decimal.Decimal {
	raw, err := h.db.GetSettingValue(key, def)
	if err != nil {
		h.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.RequireFromString(def)
	}
	return d
}

// CalculatePayout fetches the commission for an offer and computes what the
// seller keeps from a sale
func (h *Handler) CalculatePayout(w http.ResponseWriter, r *http.Request) {
	var req PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Price.IsPositive() {
		h.errorResponse(w, http.StatusBadRequest, calculator.ErrInvalidPrice.Error())
		return
	}

	c, _ := h.client(w, r)
	if c == nil {
		return
	}

	pc, err := c.GetCommission(r.Context(), req.EAN, req.Condition, req.Price.StringFixed(2))
	if err != nil {
		h.clientError(w, "get commission", err)
		return
	}
	commission, err := calculator.FromPlaza(pc)
	if err != nil {
		h.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	vat := h.decimalSetting(database.SettingVATPercent, "21")
	if req.VATPercent != nil {
		vat = *req.VATPercent
	}
	target := h.decimalSetting(database.SettingTargetMarginPercent, "20")
	if req.TargetMarginPercent != nil {
		target = *req.TargetMarginPercent
	}

	result, err := calculator.CalculatePayout(commission, calculator.PayoutParams{
		Price:               req.Price,
		Quantity:            req.Quantity,
		UnitCost:            req.UnitCost,
		ShippingCost:        req.ShippingCost,
		VATPercent:          vat,
		TargetMarginPercent: target,
	})
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, PayoutResponse{
		PayoutResult:   result,
		Commission:     commission,
		BreakEvenPrice: calculator.BreakEvenPrice(commission, req.UnitCost, req.ShippingCost, vat),
	})
}

// syncAccount resolves the client of the account a sync runs for. Syncs
// always need a stored account to write to.
func (h *Handler) syncAccount(w http.ResponseWriter, r *http.Request) (*plaza.Client, int64) {
	if r.URL.Query().Get("account") == "" {
		h.errorResponse(w, http.StatusBadRequest, "account is required")
		return nil, 0
	}
	return h.client(w, r)
}

func (h *Handler) syncContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.syncTimeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), h.syncTimeout)
}

// SyncExport pulls the account's Plaza data into the database
func (h *Handler) SyncExport(w http.ResponseWriter, r *http.Request) {
	c, id := h.syncAccount(w, r)
	if c == nil {
		return
	}

	ctx, cancel := h.syncContext(r)
	defer cancel()

	h.logger.Info("starting export", zap.Int64("account_id", id))
	history, err := h.syncService.Export(ctx, c, id)
	h.syncResponse(w, history, err)
}

// SyncProcessStatuses polls the stored unfinished process statuses
func (h *Handler) SyncProcessStatuses(w http.ResponseWriter, r *http.Request) {
	c, id := h.syncAccount(w, r)
	if c == nil {
		return
	}

	ctx, cancel := h.syncContext(r)
	defer cancel()

	history, err := h.syncService.RefreshProcessStatuses(ctx, c, id)
	h.syncResponse(w, history, err)
}

func (h *Handler) syncResponse(w http.ResponseWriter, history *database.SyncHistory, err error) {
	if history == nil {
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch history.Status {
	case database.SyncStatusSuccess:
		h.jsonResponse(w, http.StatusOK, history)
	case database.SyncStatusPartial:
		h.jsonResponse(w, http.StatusMultiStatus, history)
	default:
		if err != nil {
			h.clientError(w, "sync", err)
			return
		}
		h.jsonResponse(w, http.StatusInternalServerError, history)
	}
}

// GetSyncHistory returns the sync history of an account
func (h *Handler) GetSyncHistory(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil || id == 0 {
		h.errorResponse(w, http.StatusBadRequest, "account is required")
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	history, err := h.db.GetSyncHistory(id, limit)
	if err != nil {
		h.logger.Error("failed to load sync history", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []database.SyncHistory{}
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"history": history,
		"total":   len(history),
	})
}
