package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Клиенты

type Customer struct {
	ID             int64
	Name           string
	Phone          string
	Status         string
	OpeningBalance decimal.Decimal
}

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Ledger - агрегаты по клиенту; отсутствие заказов/оплат - ноль, а не NULL
type Ledger struct {
	OpeningBalance decimal.Decimal
	TotalOrders    decimal.Decimal
	TotalPayments  decimal.Decimal
}

type CustomerLedger struct {
	Customer Customer
	Ledger   Ledger
}

type CustomerBalance struct {
	Customer Customer
	Balance  decimal.Decimal
}

// Товары

type Product struct {
	ID          int64
	Name        string
	Description string
	BasePrice   decimal.Decimal
	Active      bool
	ImagePath   string
}

// Товар с ценой для конкретного клиента
type PricedProduct struct {
	Product
	EffectivePrice decimal.Decimal
}

// Корзина и сессия

type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Session - состояние пользователя между запросами.
// Хранится веб-слоем, в операции передается и возвращается по значению.
type Session struct {
	ActiveCustomerID *int64     `json:"active_customer_id,omitempty"`
	Cart             []CartLine `json:"cart"`
}

func (s Session) HasActiveCustomer() bool {
	return s.ActiveCustomerID != nil
}

// Заказы

type Order struct {
	ID          int64
	CustomerID  int64
	CreatedBy   int64
	TotalAmount decimal.Decimal
	OrderDate   time.Time
}

type OrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type OrderSummary struct {
	OrderID      int64
	OrderDate    time.Time
	TotalAmount  decimal.Decimal
	CustomerName string
}

type OrderLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

type OrderDetails struct {
	Header OrderSummary
	Items  []OrderLine
}

type DaySummary struct {
	OrderCount int
	TotalSales decimal.Decimal
}

// Оплаты

type Payment struct {
	ID            int64
	CustomerID    int64
	Amount        decimal.Decimal
	Method        string
	ReferenceNote string
	RecordedBy    int64
	Timestamp     time.Time
}

// Пользователи

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}
