// Package storemock содержит mock хранилища на testify/mock для тестов сервисов.
package storemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iurnickita/seafoodpos/internal/model"
)

type Store struct {
	mock.Mock
}

func (m *Store) AuthGetUser(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *Store) AuthSetPassword(ctx context.Context, username string, passwordHash string) error {
	args := m.Called(ctx, username, passwordHash)
	return args.Error(0)
}

func (m *Store) CustomerListActive(ctx context.Context) ([]model.Customer, error) {
	args := m.Called(ctx)
	customers, _ := args.Get(0).([]model.Customer)
	return customers, args.Error(1)
}

func (m *Store) CustomerListLedgers(ctx context.Context) ([]model.CustomerLedger, error) {
	args := m.Called(ctx)
	ledgers, _ := args.Get(0).([]model.CustomerLedger)
	return ledgers, args.Error(1)
}

func (m *Store) CustomerGetLedger(ctx context.Context, customerID int64) (model.Ledger, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(model.Ledger), args.Error(1)
}

func (m *Store) ProductListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *Store) ProductListPriced(ctx context.Context, customerID int64) ([]model.PricedProduct, error) {
	args := m.Called(ctx, customerID)
	products, _ := args.Get(0).([]model.PricedProduct)
	return products, args.Error(1)
}

func (m *Store) ProductGetPriced(ctx context.Context, customerID int64, productID int64) (model.PricedProduct, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Get(0).(model.PricedProduct), args.Error(1)
}

func (m *Store) OrderCreate(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error) {
	args := m.Called(ctx, order, items)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *Store) OrderGetDaySummary(ctx context.Context, day time.Time) (model.DaySummary, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(model.DaySummary), args.Error(1)
}

func (m *Store) OrderGetDay(ctx context.Context, day time.Time) ([]model.OrderSummary, error) {
	args := m.Called(ctx, day)
	orders, _ := args.Get(0).([]model.OrderSummary)
	return orders, args.Error(1)
}

func (m *Store) OrderGetDetails(ctx context.Context, orderID int64) (model.OrderDetails, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.OrderDetails), args.Error(1)
}

func (m *Store) PaymentPost(ctx context.Context, payment model.Payment) (model.Payment, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *Store) Close() error {
	return m.Called().Error(0)
}
