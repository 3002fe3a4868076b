package config

import "time"

type Config struct {
	// Брокеры через запятую; пусто - события не публикуются
	Brokers string
	Topic   string
	// Предел на доставку одного события; 0 - DefaultDeliveryTimeout
	DeliveryTimeout time.Duration
}
