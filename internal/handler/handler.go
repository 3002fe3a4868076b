package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/seafoodpos/internal/auth"
	"github.com/iurnickita/seafoodpos/internal/gzip"
	"github.com/iurnickita/seafoodpos/internal/handler/config"
	"github.com/iurnickita/seafoodpos/internal/logger"
	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/service"
	"github.com/iurnickita/seafoodpos/internal/session"
)

const (
	pathDashboard = "/api/dashboard"
	pathCart      = "/api/cart"
)

func Serve(cfg config.Config, auth auth.Auth, service service.Service, sessions *session.Store, zaplog *zap.Logger) error {
	h := newHandler(auth, service, sessions, zaplog)
	router := h.newRouter()

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zaplog.Info("server started", zap.String("addr", cfg.ServerAddr))
	return srv.ListenAndServe()
}

type handler struct {
	auth     auth.Auth
	service  service.Service
	sessions *session.Store
	zaplog   *zap.Logger
}

func newHandler(auth auth.Auth, service service.Service, sessions *session.Store, zaplog *zap.Logger) *handler {
	return &handler{
		auth:     auth,
		service:  service,
		sessions: sessions,
		zaplog:   zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	public := func(f http.HandlerFunc) http.HandlerFunc {
		return gzip.GzipMiddleware(logger.RequestLogMdlw(f, h.zaplog))
	}
	private := func(f http.HandlerFunc) http.HandlerFunc {
		return public(h.auth.Middleware(f))
	}

	mux.HandleFunc("POST /api/login", public(h.auth.Login))
	mux.HandleFunc("POST /api/logout", public(h.auth.Logout))
	mux.HandleFunc("GET "+pathDashboard, private(h.GetDashboard))
	mux.HandleFunc("POST /api/customer", private(h.PostCustomer))
	mux.HandleFunc("GET "+pathCart, private(h.GetCart))
	mux.HandleFunc("POST /api/cart/add", private(h.PostCartAdd))
	mux.HandleFunc("POST /api/cart/update", private(h.PostCartUpdate))
	mux.HandleFunc("POST /api/cart/remove", private(h.PostCartRemove))
	mux.HandleFunc("POST /api/order/confirm", private(h.PostOrderConfirm))
	mux.HandleFunc("GET /api/orders/today", private(h.GetOrdersToday))
	mux.HandleFunc("GET /api/orders/{id}", private(h.GetOrder))
	mux.HandleFunc("GET /api/products", private(h.GetProducts))
	mux.HandleFunc("GET /api/customers", private(h.GetCustomers))
	mux.HandleFunc("POST /api/payments", private(h.PostPayment))

	return mux
}

// JSON

type CartLineJSON struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CustomerJSON struct {
	CustomerID int64            `json:"customer_id"`
	Name       string           `json:"name"`
	Phone      string           `json:"phone,omitempty"`
	Balance    *decimal.Decimal `json:"current_balance,omitempty"`
}

type ProductJSON struct {
	ProductID      int64            `json:"product_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	BasePrice      decimal.Decimal  `json:"base_price"`
	EffectivePrice *decimal.Decimal `json:"effective_price,omitempty"`
	IsActive       bool             `json:"is_active"`
	ImagePath      string           `json:"image_path,omitempty"`
}

type TodayStatsJSON struct {
	OrderCount int             `json:"order_count"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type GetDashboardJSONResponse struct {
	BusinessName          string           `json:"business_name"`
	Username              string           `json:"username"`
	Customers             []CustomerJSON   `json:"customers"`
	ActiveCustomerID      *int64           `json:"active_customer_id"`
	Products              []ProductJSON    `json:"products"`
	ActiveCustomerBalance *decimal.Decimal `json:"active_customer_balance"`
	Cart                  []CartLineJSON   `json:"cart"`
	CartTotal             decimal.Decimal  `json:"cart_total"`
	TodayStats            TodayStatsJSON   `json:"today_stats"`
}

type GetCartJSONResponse struct {
	CustomerID int64           `json:"customer_id"`
	Cart       []CartLineJSON  `json:"cart"`
	CartTotal  decimal.Decimal `json:"cart_total"`
}

type OrderSummaryJSON struct {
	OrderID      int64           `json:"order_id"`
	OrderDate    time.Time       `json:"order_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CustomerName string          `json:"customer_name"`
}

type OrderLineJSON struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type GetOrderJSONResponse struct {
	Order     OrderSummaryJSON `json:"order"`
	LineItems []OrderLineJSON  `json:"line_items"`
}

type PostCustomerJSONRequest struct {
	CustomerID int64 `json:"customer_id"`
}

type PostCartItemJSONRequest struct {
	ProductID int64 `json:"product_id"`
	Qty       *int  `json:"qty"`
}

type PostPaymentJSONRequest struct {
	CustomerID    int64           `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	ReferenceNote string          `json:"reference_note"`
}

type PostPaymentJSONResponse struct {
	PaymentID int64     `json:"payment_id"`
	Timestamp time.Time `json:"timestamp"`
}

func cartJSON(lines []model.CartLine) []CartLineJSON {
	out := make([]CartLineJSON, 0, len(lines))
	for _, line := range lines {
		out = append(out, CartLineJSON(line))
	}
	return out
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(responseJSON)
}

func (h *handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *handler) loadSession(r *http.Request) model.Session {
	return h.sessions.Load(r, h.user(r).ID)
}

func (h *handler) saveSession(w http.ResponseWriter, r *http.Request, sess model.Session) bool {
	if err := h.sessions.Save(w, h.user(r).ID, sess); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionTooLarge):
			// прежняя корзина остается
			http.Error(w, "Cart is too large", http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return false
	}
	return true
}

func (h *handler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (h *handler) user(r *http.Request) auth.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}

// Handlers

func (h *handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.loadSession(r)

	dashboard, err := h.service.GetDashboard(r.Context(), sess)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := GetDashboardJSONResponse{
		BusinessName:          h.service.BusinessName(),
		Username:              h.user(r).Username,
		Customers:             make([]CustomerJSON, 0, len(dashboard.Customers)),
		ActiveCustomerID:      dashboard.ActiveCustomerID,
		Products:              make([]ProductJSON, 0, len(dashboard.Products)),
		ActiveCustomerBalance: dashboard.ActiveCustomerBalance,
		Cart:                  cartJSON(dashboard.Cart),
		CartTotal:             dashboard.CartTotal,
		TodayStats: TodayStatsJSON{
			OrderCount: dashboard.Today.OrderCount,
			TotalSales: dashboard.Today.TotalSales,
		},
	}
	for _, c := range dashboard.Customers {
		response.Customers = append(response.Customers, CustomerJSON{CustomerID: c.ID, Name: c.Name})
	}
	for _, p := range dashboard.Products {
		effective := p.EffectivePrice
		response.Products = append(response.Products, ProductJSON{
			ProductID:      p.ID,
			Name:           p.Name,
			Description:    p.Description,
			BasePrice:      p.BasePrice,
			EffectivePrice: &effective,
			IsActive:       p.Active,
			ImagePath:      p.ImagePath,
		})
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) PostCustomer(w http.ResponseWriter, r *http.Request) {
	var req PostCustomerJSONRequest
	if err := h.readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// пустой выбор - ничего не меняем
	if req.CustomerID != 0 {
		sess := h.service.SetActiveCustomer(h.loadSession(r), req.CustomerID)
		if !h.saveSession(w, r, sess) {
			return
		}
	}
	h.redirect(w, r, pathDashboard)
}

func (h *handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := h.loadSession(r)
	if !sess.HasActiveCustomer() {
		h.redirect(w, r, pathDashboard)
		return
	}

	h.writeJSON(w, http.StatusOK, GetCartJSONResponse{
		CustomerID: *sess.ActiveCustomerID,
		Cart:       cartJSON(sess.Cart),
		CartTotal:  h.service.CartTotal(sess),
	})
}

func (h *handler) PostCartAdd(w http.ResponseWriter, r *http.Request) {
	var req PostCartItemJSONRequest
	if err := h.readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	sess, err := h.service.CartAdd(r.Context(), h.loadSession(r), req.ProductID, qty)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveCustomer):
			h.redirect(w, r, pathDashboard)
		case errors.Is(err, service.ErrProductNotFound),
			errors.Is(err, service.ErrInvalidQuantity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}
	h.redirect(w, r, pathDashboard)
}

func (h *handler) PostCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req PostCartItemJSONRequest
	if err := h.readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Qty == nil {
		http.Error(w, "qty is required", http.StatusBadRequest)
		return
	}

	sess := h.service.CartUpdate(h.loadSession(r), req.ProductID, *req.Qty)
	if !h.saveSession(w, r, sess) {
		return
	}
	h.redirect(w, r, pathCart)
}

func (h *handler) PostCartRemove(w http.ResponseWriter, r *http.Request) {
	var req PostCartItemJSONRequest
	if err := h.readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.service.CartRemove(h.loadSession(r), req.ProductID)
	if !h.saveSession(w, r, sess) {
		return
	}
	h.redirect(w, r, pathCart)
}

func (h *handler) PostOrderConfirm(w http.ResponseWriter, r *http.Request) {
	sess, order, err := h.service.PostOrder(r.Context(), h.loadSession(r), h.user(r).ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveCustomer),
			errors.Is(err, service.ErrEmptyCartCheckout):
			h.redirect(w, r, pathDashboard)
		default:
			// корзина остается в сессии, можно повторить
			h.zaplog.Error("order confirm failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}
	w.Header().Set("X-Order-Id", strconv.FormatInt(order.ID, 10))
	h.redirect(w, r, pathDashboard)
}

func (h *handler) GetOrdersToday(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetOrdersToday(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ordersJSON := make([]OrderSummaryJSON, 0, len(orders))
	for _, o := range orders {
		ordersJSON = append(ordersJSON, OrderSummaryJSON(o))
	}
	h.writeJSON(w, http.StatusOK, ordersJSON)
}

func (h *handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	details, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	response := GetOrderJSONResponse{
		Order:     OrderSummaryJSON(details.Header),
		LineItems: make([]OrderLineJSON, 0, len(details.Items)),
	}
	for _, line := range details.Items {
		response.LineItems = append(response.LineItems, OrderLineJSON(line))
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetProducts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	productsJSON := make([]ProductJSON, 0, len(products))
	for _, p := range products {
		productsJSON = append(productsJSON, ProductJSON{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			BasePrice:   p.BasePrice,
			IsActive:    p.Active,
			ImagePath:   p.ImagePath,
		})
	}
	h.writeJSON(w, http.StatusOK, productsJSON)
}

func (h *handler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.GetCustomers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	customersJSON := make([]CustomerJSON, 0, len(customers))
	for _, c := range customers {
		balance := c.Balance
		customersJSON = append(customersJSON, CustomerJSON{
			CustomerID: c.Customer.ID,
			Name:       c.Customer.Name,
			Phone:      c.Customer.Phone,
			Balance:    &balance,
		})
	}
	h.writeJSON(w, http.StatusOK, customersJSON)
}

func (h *handler) PostPayment(w http.ResponseWriter, r *http.Request) {
	var req PostPaymentJSONRequest
	if err := h.readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment, err := h.service.PostPayment(r.Context(), model.Payment{
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Method:        req.Method,
		ReferenceNote: req.ReferenceNote,
		RecordedBy:    h.user(r).ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInsufficientData):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrCustomerNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, PostPaymentJSONResponse{
		PaymentID: payment.ID,
		Timestamp: payment.Timestamp,
	})
}
