package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/seafoodpos/internal/model"
)

func newMockStore(t *testing.T) (*store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(db), mock
}

func testOrder() (model.Order, []model.OrderItem) {
	order := model.Order{
		CustomerID:  7,
		CreatedBy:   1,
		TotalAmount: decimal.NewFromInt(35),
	}
	items := []model.OrderItem{
		{ProductID: 10, Quantity: 2, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(20)},
		{ProductID: 11, Quantity: 3, UnitPrice: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(15)},
	}
	return order, items
}

func TestStoreOrderCreate(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	order, items := testOrder()
	orderDate := time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders (customer_id, created_by, total_amount)")).
		WithArgs(int64(7), int64(1), decimal.NewFromInt(35)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "order_date"}).AddRow(int64(42), orderDate))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(int64(42), int64(10), 2, decimal.NewFromInt(10), decimal.NewFromInt(20)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(int64(42), int64(11), 3, decimal.NewFromInt(5), decimal.NewFromInt(15)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	created, err := store.OrderCreate(ctx, order, items)
	require.NoError(t, err)
	require.Equal(t, int64(42), created.ID)
	require.Equal(t, orderDate, created.OrderDate)
	require.True(t, created.TotalAmount.Equal(decimal.NewFromInt(35)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreOrderCreateRollback(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	order, items := testOrder()

	// вторая позиция падает - заказ откатывается целиком
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "order_date"}).AddRow(int64(42), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "order_items_product_id_fkey"})
	mock.ExpectRollback()

	_, err := store.OrderCreate(ctx, order, items)
	require.ErrorIs(t, err, ErrUnknownReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreOrderCreateCommitFails(t *testing.T) {
	store, mock := newMockStore(t)
	order, items := testOrder()
	commitErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "order_date"}).AddRow(int64(42), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit().WillReturnError(commitErr)

	_, err := store.OrderCreate(context.Background(), order, items)
	require.ErrorIs(t, err, commitErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreOrderCreateEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	order, _ := testOrder()

	_, err := store.OrderCreate(context.Background(), order, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCustomerGetLedger(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE((SELECT opening_balance FROM customers WHERE customer_id = $1), 0)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"opening", "orders", "payments"}).AddRow("100.00", "40.00", "25.00"))

	ledger, err := store.CustomerGetLedger(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, ledger.OpeningBalance.Equal(decimal.NewFromInt(100)))
	require.True(t, ledger.TotalOrders.Equal(decimal.NewFromInt(40)))
	require.True(t, ledger.TotalPayments.Equal(decimal.NewFromInt(25)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCustomerListLedgers(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers c")).
		WithArgs(model.CustomerStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "name", "phone", "status", "opening_balance", "orders", "payments"}).
			AddRow(int64(1), "Harbour Grill", "555-0101", "active", "100.00", "0", "0"))

	ledgers, err := store.CustomerListLedgers(context.Background())
	require.NoError(t, err)
	require.Len(t, ledgers, 1)
	require.Equal(t, "Harbour Grill", ledgers[0].Customer.Name)
	require.True(t, ledgers[0].Ledger.OpeningBalance.Equal(decimal.NewFromInt(100)))
	require.True(t, ledgers[0].Ledger.TotalOrders.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreProductGetPriced(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	columns := []string{"product_id", "name", "description", "base_price", "is_active", "image_path", "effective_price"}

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(csp.special_price, p.base_price)")).
		WithArgs(int64(3), int64(10)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(10), "Tiger prawns", "", "12.50", true, "", "11.00"))
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(csp.special_price, p.base_price)")).
		WithArgs(int64(3), int64(99)).
		WillReturnRows(sqlmock.NewRows(columns))

	product, err := store.ProductGetPriced(ctx, 3, 10)
	require.NoError(t, err)
	require.Equal(t, "Tiger prawns", product.Name)
	require.True(t, product.EffectivePrice.Equal(decimal.RequireFromString("11")))
	require.True(t, product.BasePrice.Equal(decimal.RequireFromString("12.5")))

	_, err = store.ProductGetPriced(ctx, 3, 99)
	require.ErrorIs(t, err, ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreOrderGetDetails(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	orderDate := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.order_id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "order_date", "total_amount", "name"}).
			AddRow(int64(42), orderDate, "35.00", "Harbour Grill"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items oi")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "quantity", "unit_price", "line_total"}).
			AddRow("Salmon", int64(2), "10.00", "20.00").
			AddRow("Mussels", int64(3), "5.00", "15.00"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.order_id = $1")).
		WithArgs(int64(43)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "order_date", "total_amount", "name"}))

	details, err := store.OrderGetDetails(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "Harbour Grill", details.Header.CustomerName)
	require.Len(t, details.Items, 2)
	require.Equal(t, 3, details.Items[1].Quantity)

	_, err = store.OrderGetDetails(ctx, 43)
	require.ErrorIs(t, err, ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreOrderGetDaySummary(t *testing.T) {
	store, mock := newMockStore(t)
	day := time.Date(2026, 10, 15, 17, 45, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COALESCE(SUM(total_amount), 0)")).
		WithArgs(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(int64(0), "0"))

	summary, err := store.OrderGetDaySummary(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 0, summary.OrderCount)
	require.True(t, summary.TotalSales.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorePaymentPost(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(int64(3), decimal.NewFromInt(25), "cash", "", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "timestamp"}).AddRow(int64(5), ts))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "payments_customer_id_fkey"})

	payment, err := store.PaymentPost(ctx, model.Payment{
		CustomerID: 3,
		Amount:     decimal.NewFromInt(25),
		Method:     "cash",
		RecordedBy: 1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), payment.ID)
	require.Equal(t, ts, payment.Timestamp)

	_, err = store.PaymentPost(ctx, model.Payment{CustomerID: 404, Amount: decimal.NewFromInt(1), RecordedBy: 1})
	require.ErrorIs(t, err, ErrUnknownReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAuthSetPassword(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1")).
		WithArgs("hash", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1")).
		WithArgs("hash", "nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.AuthSetPassword(ctx, "admin", "hash"))
	require.ErrorIs(t, store.AuthSetPassword(ctx, "nobody", "hash"), ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
