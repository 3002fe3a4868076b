package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store"
	"github.com/iurnickita/seafoodpos/internal/store/storemock"
)

func pricedProduct(id int64, name string, base, effective string) model.PricedProduct {
	return model.PricedProduct{
		Product: model.Product{
			ID:        id,
			Name:      name,
			BasePrice: decimal.RequireFromString(base),
			Active:    true,
		},
		EffectivePrice: decimal.RequireFromString(effective),
	}
}

func TestResolverCatalog(t *testing.T) {
	ctx := context.Background()
	st := &storemock.Store{}
	catalog := []model.PricedProduct{
		pricedProduct(2, "Crab", "20.00", "20.00"),
		pricedProduct(1, "Salmon", "12.00", "10.50"),
	}
	st.On("ProductListPriced", ctx, int64(3)).Return(catalog, nil)

	resolver := NewResolver(st)
	got, err := resolver.Catalog(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, catalog, got)

	// повторное чтение без записей дает тот же результат
	again, err := resolver.Catalog(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, got, again)
	st.AssertNumberOfCalls(t, "ProductListPriced", 2)
}

func TestResolverPrice(t *testing.T) {
	ctx := context.Background()
	st := &storemock.Store{}
	st.On("ProductGetPriced", ctx, int64(3), int64(1)).Return(pricedProduct(1, "Salmon", "12.00", "10.50"), nil)
	st.On("ProductGetPriced", ctx, int64(3), int64(9)).Return(model.PricedProduct{}, store.ErrNoRows)
	dbErr := errors.New("connection refused")
	st.On("ProductGetPriced", ctx, int64(3), int64(5)).Return(model.PricedProduct{}, dbErr)

	resolver := NewResolver(st)

	product, err := resolver.Price(ctx, 3, 1)
	require.NoError(t, err)
	require.True(t, product.EffectivePrice.Equal(decimal.RequireFromString("10.5")))

	_, err = resolver.Price(ctx, 3, 9)
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = resolver.Price(ctx, 3, 5)
	require.ErrorIs(t, err, dbErr)
	st.AssertExpectations(t)
}
