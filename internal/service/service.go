package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/seafoodpos/internal/balance"
	"github.com/iurnickita/seafoodpos/internal/cart"
	"github.com/iurnickita/seafoodpos/internal/checkout"
	"github.com/iurnickita/seafoodpos/internal/events"
	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/payment"
	"github.com/iurnickita/seafoodpos/internal/pricing"
	"github.com/iurnickita/seafoodpos/internal/service/config"
	"github.com/iurnickita/seafoodpos/internal/store"
)

type Service interface {
	BusinessName() string
	GetDashboard(ctx context.Context, sess model.Session) (Dashboard, error)
	SetActiveCustomer(sess model.Session, customerID int64) model.Session
	CartAdd(ctx context.Context, sess model.Session, productID int64, qty int) (model.Session, error)
	CartUpdate(sess model.Session, productID int64, qty int) model.Session
	CartRemove(sess model.Session, productID int64) model.Session
	CartTotal(sess model.Session) decimal.Decimal
	PostOrder(ctx context.Context, sess model.Session, userID int64) (model.Session, model.Order, error)
	GetOrdersToday(ctx context.Context) ([]model.OrderSummary, error)
	GetOrder(ctx context.Context, orderID int64) (model.OrderDetails, error)
	GetProducts(ctx context.Context) ([]model.Product, error)
	GetCustomers(ctx context.Context) ([]model.CustomerBalance, error)
	PostPayment(ctx context.Context, payment model.Payment) (model.Payment, error)
}

var (
	ErrNoActiveCustomer  = cart.ErrNoActiveCustomer
	ErrInvalidQuantity   = cart.ErrInvalidQuantity
	ErrProductNotFound   = pricing.ErrProductNotFound
	ErrEmptyCartCheckout = checkout.ErrEmptyCartCheckout
	ErrInvalidAmount     = payment.ErrInvalidAmount
	ErrInsufficientData  = payment.ErrInsufficientData
	ErrCustomerNotFound  = payment.ErrCustomerNotFound
	ErrOrderNotFound     = errors.New("order not found")
)

// Dashboard - данные главной страницы
type Dashboard struct {
	Customers        []model.Customer
	ActiveCustomerID *int64
	Products         []model.PricedProduct
	// nil, если клиент не выбран
	ActiveCustomerBalance *decimal.Decimal
	Cart                  []model.CartLine
	CartTotal             decimal.Decimal
	Today                 model.DaySummary
}

type service struct {
	cfg      config.Config
	store    store.Store
	location *time.Location
	now      func() time.Time
	pricing  pricing.Resolver
	balance  balance.Balance
	cart     cart.Cart
	checkout checkout.Checkout
	payment  payment.Recorder
}

func NewService(cfg config.Config, store store.Store, publisher events.Publisher, zaplog *zap.Logger) (Service, error) {
	location := time.Local
	if cfg.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, err
		}
		location = loc
	}

	pricing := pricing.NewResolver(store)
	cart := cart.NewCart(pricing)

	service := service{
		cfg:      cfg,
		store:    store,
		location: location,
		now:      time.Now,
		pricing:  pricing,
		balance:  balance.NewBalance(store),
		cart:     cart,
		checkout: checkout.NewCheckout(store, cart, publisher, zaplog),
		payment:  payment.NewRecorder(store),
	}

	return &service, nil
}

func (service *service) BusinessName() string {
	return service.cfg.BusinessName
}

func (service *service) today() time.Time {
	return service.now().In(service.location)
}

func (service *service) GetDashboard(ctx context.Context, sess model.Session) (Dashboard, error) {
	var dashboard Dashboard
	var err error

	dashboard.Customers, err = service.store.CustomerListActive(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	// Каталог и баланс - только при выбранном клиенте
	if sess.HasActiveCustomer() {
		customerID := *sess.ActiveCustomerID
		dashboard.ActiveCustomerID = &customerID

		dashboard.Products, err = service.pricing.Catalog(ctx, customerID)
		if err != nil {
			return Dashboard{}, err
		}
		current, err := service.balance.Get(ctx, customerID)
		if err != nil {
			return Dashboard{}, err
		}
		dashboard.ActiveCustomerBalance = &current
	}

	dashboard.Cart = sess.Cart
	dashboard.CartTotal = service.cart.Total(sess)

	dashboard.Today, err = service.store.OrderGetDaySummary(ctx, service.today())
	if err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

func (service *service) SetActiveCustomer(sess model.Session, customerID int64) model.Session {
	return service.cart.SetActiveCustomer(sess, customerID)
}

func (service *service) CartAdd(ctx context.Context, sess model.Session, productID int64, qty int) (model.Session, error) {
	return service.cart.AddItem(ctx, sess, productID, qty)
}

func (service *service) CartUpdate(sess model.Session, productID int64, qty int) model.Session {
	return service.cart.UpdateItem(sess, productID, qty)
}

func (service *service) CartRemove(sess model.Session, productID int64) model.Session {
	return service.cart.RemoveItem(sess, productID)
}

func (service *service) CartTotal(sess model.Session) decimal.Decimal {
	return service.cart.Total(sess)
}

func (service *service) PostOrder(ctx context.Context, sess model.Session, userID int64) (model.Session, model.Order, error) {
	if userID == 0 {
		return sess, model.Order{}, ErrInsufficientData
	}
	return service.checkout.Confirm(ctx, sess, userID)
}

func (service *service) GetOrdersToday(ctx context.Context) ([]model.OrderSummary, error) {
	return service.store.OrderGetDay(ctx, service.today())
}

func (service *service) GetOrder(ctx context.Context, orderID int64) (model.OrderDetails, error) {
	details, err := service.store.OrderGetDetails(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoRows):
			return model.OrderDetails{}, ErrOrderNotFound
		default:
			return model.OrderDetails{}, err
		}
	}
	return details, nil
}

func (service *service) GetProducts(ctx context.Context) ([]model.Product, error) {
	return service.store.ProductListAll(ctx)
}

func (service *service) GetCustomers(ctx context.Context) ([]model.CustomerBalance, error) {
	return service.balance.List(ctx)
}

func (service *service) PostPayment(ctx context.Context, payment model.Payment) (model.Payment, error) {
	return service.payment.Record(ctx, payment)
}
