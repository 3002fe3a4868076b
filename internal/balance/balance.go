package balance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store"
)

// Balance считает текущий баланс клиента по журналу заказов и оплат.
// Значение не кэшируется: каждый вызов читает хранилище заново.
type Balance interface {
	Get(ctx context.Context, customerID int64) (decimal.Decimal, error)
	List(ctx context.Context) ([]model.CustomerBalance, error)
}

type balance struct {
	store store.Store
}

func NewBalance(store store.Store) Balance {
	balance := balance{store: store}
	return &balance
}

// Current: начальный баланс + заказы - оплаты
func Current(ledger model.Ledger) decimal.Decimal {
	return ledger.OpeningBalance.Add(ledger.TotalOrders).Sub(ledger.TotalPayments)
}

func (balance *balance) Get(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	ledger, err := balance.store.CustomerGetLedger(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return Current(ledger), nil
}

func (balance *balance) List(ctx context.Context) ([]model.CustomerBalance, error) {
	ledgers, err := balance.store.CustomerListLedgers(ctx)
	if err != nil {
		return nil, err
	}

	balances := make([]model.CustomerBalance, 0, len(ledgers))
	for _, l := range ledgers {
		balances = append(balances, model.CustomerBalance{
			Customer: l.Customer,
			Balance:  Current(l.Ledger),
		})
	}
	return balances, nil
}
