package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/iurnickita/seafoodpos/internal/model"
	"github.com/iurnickita/seafoodpos/internal/store/config"
)

type Store interface {
	AuthGetUser(ctx context.Context, username string) (model.User, error)
	AuthSetPassword(ctx context.Context, username string, passwordHash string) error
	CustomerListActive(ctx context.Context) ([]model.Customer, error)
	CustomerListLedgers(ctx context.Context) ([]model.CustomerLedger, error)
	CustomerGetLedger(ctx context.Context, customerID int64) (model.Ledger, error)
	ProductListAll(ctx context.Context) ([]model.Product, error)
	ProductListPriced(ctx context.Context, customerID int64) ([]model.PricedProduct, error)
	ProductGetPriced(ctx context.Context, customerID int64, productID int64) (model.PricedProduct, error)
	OrderCreate(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error)
	OrderGetDaySummary(ctx context.Context, day time.Time) (model.DaySummary, error)
	OrderGetDay(ctx context.Context, day time.Time) ([]model.OrderSummary, error)
	OrderGetDetails(ctx context.Context, orderID int64) (model.OrderDetails, error)
	PaymentPost(ctx context.Context, payment model.Payment) (model.Payment, error)
	Close() error
}

var (
	ErrNoRows           = errors.New("no rows")
	ErrUnknownReference = errors.New("unknown customer, product or user")
	ErrEmptyOrder       = errors.New("order has no items")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

//go:embed migrations/*.sql
var migrations embed.FS

type store struct {
	database *sql.DB
}

func NewStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	// Схема БД ведется миграциями goose
	goose.SetBaseFS(migrations)
	if err = goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, err
	}
	if err = goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return newStore(db), nil
}

func newStore(db *sql.DB) *store {
	return &store{database: db}
}

func (store *store) Close() error {
	return store.database.Close()
}

// withTx выполняет fn в одной транзакции: при ошибке откат, иначе commit
func (store *store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := store.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback: %v: %w", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrUnknownReference, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("duplicate %s: %w", pgErr.ConstraintName, err)
		}
	}
	return err
}

// Пользователи

func (store *store) AuthGetUser(ctx context.Context, username string) (model.User, error) {
	var user model.User
	row := store.database.QueryRowContext(ctx,
		"SELECT user_id, username, password_hash FROM users"+
			" WHERE username = $1",
		username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNoRows
		}
		return model.User{}, err
	}
	return user, nil
}

func (store *store) AuthSetPassword(ctx context.Context, username string, passwordHash string) error {
	res, err := store.database.ExecContext(ctx,
		"UPDATE users SET password_hash = $1"+
			" WHERE username = $2",
		passwordHash,
		username)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

// Клиенты

func (store *store) CustomerListActive(ctx context.Context) ([]model.Customer, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT customer_id, name, phone, status, opening_balance"+
			" FROM customers"+
			" WHERE status = $1"+
			" ORDER BY name",
		model.CustomerStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Status, &c.OpeningBalance)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Суммы заказов и оплат, отсутствие строк дает 0
const ledgerExpr = "COALESCE((SELECT SUM(o.total_amount) FROM orders o WHERE o.customer_id = c.customer_id), 0)," +
	" COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.customer_id = c.customer_id), 0)"

func (store *store) CustomerListLedgers(ctx context.Context) ([]model.CustomerLedger, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT c.customer_id, c.name, c.phone, c.status, c.opening_balance, "+ledgerExpr+
			" FROM customers c"+
			" WHERE c.status = $1"+
			" ORDER BY c.name",
		model.CustomerStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledgers []model.CustomerLedger
	for rows.Next() {
		var l model.CustomerLedger
		err := rows.Scan(&l.Customer.ID,
			&l.Customer.Name,
			&l.Customer.Phone,
			&l.Customer.Status,
			&l.Customer.OpeningBalance,
			&l.Ledger.TotalOrders,
			&l.Ledger.TotalPayments)
		if err != nil {
			return nil, err
		}
		l.Ledger.OpeningBalance = l.Customer.OpeningBalance
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

func (store *store) CustomerGetLedger(ctx context.Context, customerID int64) (model.Ledger, error) {
	// Неизвестный клиент - начальный баланс 0
	row := store.database.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT opening_balance FROM customers WHERE customer_id = $1), 0),"+
			" COALESCE((SELECT SUM(total_amount) FROM orders WHERE customer_id = $1), 0),"+
			" COALESCE((SELECT SUM(amount) FROM payments WHERE customer_id = $1), 0)",
		customerID)
	var ledger model.Ledger
	err := row.Scan(&ledger.OpeningBalance, &ledger.TotalOrders, &ledger.TotalPayments)
	if err != nil {
		return model.Ledger{}, err
	}
	return ledger, nil
}

// Товары

func (store *store) ProductListAll(ctx context.Context) ([]model.Product, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT product_id, name, description, base_price, is_active, image_path"+
			" FROM products"+
			" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.BasePrice, &p.Active, &p.ImagePath)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Спеццена клиента, если есть, иначе базовая
const pricedSelect = "SELECT p.product_id, p.name, p.description, p.base_price, p.is_active, p.image_path," +
	" COALESCE(csp.special_price, p.base_price)" +
	" FROM products p" +
	" LEFT JOIN customer_special_price csp" +
	"   ON csp.product_id = p.product_id" +
	"  AND csp.customer_id = $1"

func scanPriced(scan func(dest ...any) error) (model.PricedProduct, error) {
	var p model.PricedProduct
	err := scan(&p.ID, &p.Name, &p.Description, &p.BasePrice, &p.Active, &p.ImagePath, &p.EffectivePrice)
	return p, err
}

func (store *store) ProductListPriced(ctx context.Context, customerID int64) ([]model.PricedProduct, error) {
	rows, err := store.database.QueryContext(ctx,
		pricedSelect+
			" WHERE p.is_active"+
			" ORDER BY p.name",
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.PricedProduct
	for rows.Next() {
		p, err := scanPriced(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (store *store) ProductGetPriced(ctx context.Context, customerID int64, productID int64) (model.PricedProduct, error) {
	row := store.database.QueryRowContext(ctx,
		pricedSelect+
			" WHERE p.product_id = $2"+
			"   AND p.is_active",
		customerID,
		productID)
	p, err := scanPriced(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PricedProduct{}, ErrNoRows
		}
		return model.PricedProduct{}, err
	}
	return p, nil
}

// Заказы

// OrderCreate записывает шапку заказа и все его позиции в одной транзакции.
func (store *store) OrderCreate(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error) {
	if len(items) == 0 {
		return model.Order{}, ErrEmptyOrder
	}

	err := store.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"INSERT INTO orders (customer_id, created_by, total_amount)"+
				" VALUES ($1, $2, $3)"+
				" RETURNING order_id, order_date",
			order.CustomerID,
			order.CreatedBy,
			order.TotalAmount)
		if err := row.Scan(&order.ID, &order.OrderDate); err != nil {
			return fmt.Errorf("insert order: %w", translateError(err))
		}

		for _, item := range items {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)"+
					" VALUES ($1, $2, $3, $4, $5)",
				order.ID,
				item.ProductID,
				item.Quantity,
				item.UnitPrice,
				item.LineTotal)
			if err != nil {
				return fmt.Errorf("insert order item %d: %w", item.ProductID, translateError(err))
			}
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func (store *store) OrderGetDaySummary(ctx context.Context, day time.Time) (model.DaySummary, error) {
	from, to := dayBounds(day)
	row := store.database.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_amount), 0)"+
			" FROM orders"+
			" WHERE order_date >= $1"+
			"   AND order_date < $2",
		from,
		to)
	var summary model.DaySummary
	if err := row.Scan(&summary.OrderCount, &summary.TotalSales); err != nil {
		return model.DaySummary{}, err
	}
	return summary, nil
}

func (store *store) OrderGetDay(ctx context.Context, day time.Time) ([]model.OrderSummary, error) {
	from, to := dayBounds(day)
	rows, err := store.database.QueryContext(ctx,
		"SELECT o.order_id, o.order_date, o.total_amount, c.name"+
			" FROM orders o"+
			" JOIN customers c ON c.customer_id = o.customer_id"+
			" WHERE o.order_date >= $1"+
			"   AND o.order_date < $2"+
			" ORDER BY o.order_date DESC",
		from,
		to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.OrderSummary
	for rows.Next() {
		var o model.OrderSummary
		err := rows.Scan(&o.OrderID, &o.OrderDate, &o.TotalAmount, &o.CustomerName)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (store *store) OrderGetDetails(ctx context.Context, orderID int64) (model.OrderDetails, error) {
	var details model.OrderDetails

	// Шапка
	row := store.database.QueryRowContext(ctx,
		"SELECT o.order_id, o.order_date, o.total_amount, c.name"+
			" FROM orders o"+
			" JOIN customers c ON c.customer_id = o.customer_id"+
			" WHERE o.order_id = $1",
		orderID)
	err := row.Scan(&details.Header.OrderID,
		&details.Header.OrderDate,
		&details.Header.TotalAmount,
		&details.Header.CustomerName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.OrderDetails{}, ErrNoRows
		}
		return model.OrderDetails{}, err
	}

	// Позиции
	rows, err := store.database.QueryContext(ctx,
		"SELECT p.name, oi.quantity, oi.unit_price, oi.line_total"+
			" FROM order_items oi"+
			" JOIN products p ON p.product_id = oi.product_id"+
			" WHERE oi.order_id = $1"+
			" ORDER BY oi.order_item_id",
		orderID)
	if err != nil {
		return model.OrderDetails{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.ProductName, &line.Quantity, &line.UnitPrice, &line.LineTotal)
		if err != nil {
			return model.OrderDetails{}, err
		}
		details.Items = append(details.Items, line)
	}
	if err := rows.Err(); err != nil {
		return model.OrderDetails{}, err
	}
	return details, nil
}

// Оплаты

func (store *store) PaymentPost(ctx context.Context, payment model.Payment) (model.Payment, error) {
	row := store.database.QueryRowContext(ctx,
		"INSERT INTO payments (customer_id, amount, method, reference_note, recorded_by)"+
			" VALUES ($1, $2, $3, $4, $5)"+
			" RETURNING payment_id, timestamp",
		payment.CustomerID,
		payment.Amount,
		payment.Method,
		payment.ReferenceNote,
		payment.RecordedBy)
	if err := row.Scan(&payment.ID, &payment.Timestamp); err != nil {
		return model.Payment{}, translateError(err)
	}
	return payment, nil
}
