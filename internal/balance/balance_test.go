package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store/storemock"
)

func ledger(opening, orders, payments int64) model.Ledger {
	return model.Ledger{
		OpeningBalance: decimal.NewFromInt(opening),
		TotalOrders:    decimal.NewFromInt(orders),
		TotalPayments:  decimal.NewFromInt(payments),
	}
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		name   string
		ledger model.Ledger
		want   decimal.Decimal
	}{
		{"opening only", ledger(100, 0, 0), decimal.NewFromInt(100)},
		{"order and payment", ledger(100, 40, 25), decimal.NewFromInt(115)},
		{"overpaid", ledger(0, 10, 30), decimal.NewFromInt(-20)},
		{"zero ledger", model.Ledger{}, decimal.Zero},
		{"fractional", model.Ledger{
			OpeningBalance: decimal.RequireFromString("10.10"),
			TotalOrders:    decimal.RequireFromString("0.20"),
			TotalPayments:  decimal.RequireFromString("0.30"),
		}, decimal.RequireFromString("10")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Current(tt.ledger)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestBalanceGet(t *testing.T) {
	ctx := context.Background()
	st := &storemock.Store{}
	st.On("CustomerGetLedger", ctx, int64(1)).Return(ledger(100, 40, 25), nil)
	dbErr := errors.New("db down")
	st.On("CustomerGetLedger", ctx, int64(2)).Return(model.Ledger{}, dbErr)

	balance := NewBalance(st)

	got, err := balance.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(115)))

	// повторное чтение без записей - то же значение
	again, err := balance.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, got.Equal(again))

	_, err = balance.Get(ctx, 2)
	require.ErrorIs(t, err, dbErr)

	// без кэша: каждый вызов читает хранилище
	st.AssertNumberOfCalls(t, "CustomerGetLedger", 3)
}

func TestBalanceList(t *testing.T) {
	ctx := context.Background()
	st := &storemock.Store{}
	st.On("CustomerListLedgers", ctx).Return([]model.CustomerLedger{
		{Customer: model.Customer{ID: 1, Name: "Harbour Grill"}, Ledger: ledger(100, 40, 25)},
		{Customer: model.Customer{ID: 2, Name: "Ocean Deli"}, Ledger: ledger(0, 0, 10)},
	}, nil)

	got, err := NewBalance(st).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Harbour Grill", got[0].Customer.Name)
	require.True(t, got[0].Balance.Equal(decimal.NewFromInt(115)))
	require.True(t, got[1].Balance.Equal(decimal.NewFromInt(-10)))
}
