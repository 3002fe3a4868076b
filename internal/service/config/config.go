package config

type Config struct {
	BusinessName string
	// Часовой пояс для "заказов за сегодня", IANA
	TimeZone string
}
