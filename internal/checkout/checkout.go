package checkout

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iurnickita/seafoodpos/internal/cart"
	"github.com/iurnickita/seafoodpos/internal/events"
	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store"
)

var (
	ErrNoActiveCustomer  = cart.ErrNoActiveCustomer
	ErrEmptyCartCheckout = errors.New("cart is empty")
)

// Checkout превращает корзину в заказ.
type Checkout interface {
	// Confirm записывает заказ с позициями одной транзакцией и очищает корзину.
	// Без активного клиента или с пустой корзиной ничего не пишет и
	// возвращает исходную сессию. При ошибке записи сессия тоже не меняется.
	Confirm(ctx context.Context, sess model.Session, actingUserID int64) (model.Session, model.Order, error)
}

type checkout struct {
	store     store.Store
	cart      cart.Cart
	publisher events.Publisher
	zaplog    *zap.Logger
}

func NewCheckout(store store.Store, cart cart.Cart, publisher events.Publisher, zaplog *zap.Logger) Checkout {
	return &checkout{
		store:     store,
		cart:      cart,
		publisher: publisher,
		zaplog:    zaplog,
	}
}

func (c *checkout) Confirm(ctx context.Context, sess model.Session, actingUserID int64) (model.Session, model.Order, error) {
	if !sess.HasActiveCustomer() {
		return sess, model.Order{}, ErrNoActiveCustomer
	}
	if len(sess.Cart) == 0 {
		return sess, model.Order{}, ErrEmptyCartCheckout
	}

	order := model.Order{
		CustomerID:  *sess.ActiveCustomerID,
		CreatedBy:   actingUserID,
		TotalAmount: c.cart.Total(sess),
	}
	items := make([]model.OrderItem, 0, len(sess.Cart))
	for _, line := range sess.Cart {
		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Qty,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}

	created, err := c.store.OrderCreate(ctx, order, items)
	if err != nil {
		return sess, model.Order{}, err
	}
	for i := range items {
		items[i].OrderID = created.ID
	}

	c.zaplog.Info("order confirmed",
		zap.Int64("order_id", created.ID),
		zap.Int64("customer_id", created.CustomerID),
		zap.Int64("created_by", created.CreatedBy),
		zap.String("total_amount", created.TotalAmount.String()),
		zap.Int("items", len(items)),
	)

	// Заказ уже записан: ошибка публикации только логируется
	if err := c.publisher.OrderConfirmed(ctx, created, items); err != nil {
		c.zaplog.Warn("order event not published",
			zap.Int64("order_id", created.ID),
			zap.Error(err),
		)
	}

	return c.cart.Clear(sess), created, nil
}
