// Package cart - корзина пользователя.
//
// Корзина живет в сессии. Операции не меняют переданную сессию,
// а возвращают обновленную копию; сохраняет ее веб-слой.
// Цена позиции фиксируется при добавлении и дальше не пересчитывается.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/pricing"
)

var (
	ErrNoActiveCustomer = errors.New("no active customer selected")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

type Cart interface {
	SetActiveCustomer(sess model.Session, customerID int64) model.Session
	AddItem(ctx context.Context, sess model.Session, productID int64, qty int) (model.Session, error)
	UpdateItem(sess model.Session, productID int64, qty int) model.Session
	RemoveItem(sess model.Session, productID int64) model.Session
	Total(sess model.Session) decimal.Decimal
	Clear(sess model.Session) model.Session
}

type cart struct {
	pricing pricing.Resolver
}

func NewCart(pricing pricing.Resolver) Cart {
	return &cart{pricing: pricing}
}

func clone(sess model.Session) model.Session {
	var out model.Session
	if sess.ActiveCustomerID != nil {
		id := *sess.ActiveCustomerID
		out.ActiveCustomerID = &id
	}
	out.Cart = make([]model.CartLine, len(sess.Cart))
	copy(out.Cart, sess.Cart)
	return out
}

func lineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// SetActiveCustomer меняет активного клиента. Корзина при этом не очищается.
func (c *cart) SetActiveCustomer(sess model.Session, customerID int64) model.Session {
	out := clone(sess)
	out.ActiveCustomerID = &customerID
	return out
}

func (c *cart) AddItem(ctx context.Context, sess model.Session, productID int64, qty int) (model.Session, error) {
	if !sess.HasActiveCustomer() {
		return sess, ErrNoActiveCustomer
	}
	if qty <= 0 {
		return sess, ErrInvalidQuantity
	}

	product, err := c.pricing.Price(ctx, *sess.ActiveCustomerID, productID)
	if err != nil {
		return sess, err
	}

	out := clone(sess)
	for i := range out.Cart {
		if out.Cart[i].ProductID == productID {
			out.Cart[i].Qty += qty
			out.Cart[i].LineTotal = lineTotal(out.Cart[i].UnitPrice, out.Cart[i].Qty)
			return out, nil
		}
	}

	out.Cart = append(out.Cart, model.CartLine{
		ProductID: productID,
		Name:      product.Name,
		UnitPrice: product.EffectivePrice,
		Qty:       qty,
		LineTotal: lineTotal(product.EffectivePrice, qty),
	})
	return out, nil
}

// UpdateItem задает новое количество; qty <= 0 удаляет позицию.
func (c *cart) UpdateItem(sess model.Session, productID int64, qty int) model.Session {
	if qty <= 0 {
		return c.RemoveItem(sess, productID)
	}

	out := clone(sess)
	for i := range out.Cart {
		if out.Cart[i].ProductID == productID {
			out.Cart[i].Qty = qty
			out.Cart[i].LineTotal = lineTotal(out.Cart[i].UnitPrice, qty)
			break
		}
	}
	return out
}

func (c *cart) RemoveItem(sess model.Session, productID int64) model.Session {
	out := clone(sess)
	out.Cart = out.Cart[:0]
	for _, line := range sess.Cart {
		if line.ProductID != productID {
			out.Cart = append(out.Cart, line)
		}
	}
	return out
}

func (c *cart) Total(sess model.Session) decimal.Decimal {
	total := decimal.Zero
	for _, line := range sess.Cart {
		total = total.Add(line.LineTotal)
	}
	return total
}

// Clear очищает корзину, активный клиент остается.
func (c *cart) Clear(sess model.Session) model.Session {
	out := clone(sess)
	out.Cart = []model.CartLine{}
	return out
}
