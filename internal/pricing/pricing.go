// Package pricing определяет цену товара для конкретного клиента:
// спеццена клиента, если она задана, иначе базовая цена товара.
package pricing

import (
	"context"
	"errors"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store"
)

var ErrProductNotFound = errors.New("product not found")

type Resolver interface {
	Catalog(ctx context.Context, customerID int64) ([]model.PricedProduct, error)
	Price(ctx context.Context, customerID int64, productID int64) (model.PricedProduct, error)
}

type resolver struct {
	store store.Store
}

func NewResolver(store store.Store) Resolver {
	return &resolver{store: store}
}

// Catalog возвращает активные товары по имени с ценой для клиента.
func (resolver *resolver) Catalog(ctx context.Context, customerID int64) ([]model.PricedProduct, error) {
	return resolver.store.ProductListPriced(ctx, customerID)
}

func (resolver *resolver) Price(ctx context.Context, customerID int64, productID int64) (model.PricedProduct, error) {
	product, err := resolver.store.ProductGetPriced(ctx, customerID, productID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return model.PricedProduct{}, ErrProductNotFound
		}
		return model.PricedProduct{}, err
	}
	return product, nil
}
