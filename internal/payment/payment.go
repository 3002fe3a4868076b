package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store"
)

var (
	ErrInvalidAmount    = errors.New("payment amount must be positive")
	ErrInsufficientData = errors.New("insufficient data")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Recorder добавляет оплату в журнал. С долгом клиента сумма не сверяется.
type Recorder interface {
	Record(ctx context.Context, payment model.Payment) (model.Payment, error)
}

type recorder struct {
	store store.Store
}

func NewRecorder(store store.Store) Recorder {
	return &recorder{store: store}
}

func (r *recorder) Record(ctx context.Context, payment model.Payment) (model.Payment, error) {
	if payment.CustomerID == 0 || payment.RecordedBy == 0 {
		return model.Payment{}, ErrInsufficientData
	}
	// в базе NUMERIC(14,2): больше двух знаков после запятой не принимаем
	if !payment.Amount.IsPositive() || !payment.Amount.Equal(payment.Amount.Round(2)) {
		return model.Payment{}, ErrInvalidAmount
	}
	payment.Method = strings.TrimSpace(payment.Method)

	created, err := r.store.PaymentPost(ctx, payment)
	if err != nil {
		if errors.Is(err, store.ErrUnknownReference) {
			return model.Payment{}, ErrCustomerNotFound
		}
		return model.Payment{}, err
	}
	return created, nil
}
