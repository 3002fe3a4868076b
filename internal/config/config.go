package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	eventsConfig "github.com/iurnickita/seafoodpos/internal/events/config"
	handlerConfig "github.com/iurnickita/seafoodpos/internal/handler/config"
	loggerConfig "github.com/iurnickita/seafoodpos/internal/logger/config"
	serviceConfig "github.com/iurnickita/seafoodpos/internal/service/config"
	storeConfig "github.com/iurnickita/seafoodpos/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config
	Service serviceConfig.Config
	Store   storeConfig.Config
	Logger  loggerConfig.Config
	Events  eventsConfig.Config
}

var ErrNoTokenSecret = errors.New("token secret is not set")

// GetConfig: .env -> флаги -> переменные окружения (приоритет у окружения)
func GetConfig() (Config, error) {
	// .env необязателен
	_ = godotenv.Load()
	return parse(os.Args[0], os.Args[1:], os.LookupEnv)
}

func parse(name string, args []string, lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Handler.ServerAddr, "a", "localhost:8080", "address and port to run server")
	fs.StringVar(&cfg.Handler.TokenSecret, "s", "", "secret key for auth token and session cookie")
	fs.BoolVar(&cfg.Handler.SecureCookie, "secure-cookie", false, "send cookies over HTTPS only")
	fs.StringVar(&cfg.Store.DBDsn, "d", "", "database connection string")
	fs.StringVar(&cfg.Logger.LogLevel, "l", "info", "log level")
	fs.StringVar(&cfg.Service.BusinessName, "n", "ABC Sea Foods", "business name")
	fs.StringVar(&cfg.Service.TimeZone, "tz", "", "time zone for daily reports")
	fs.StringVar(&cfg.Events.Brokers, "k", "", "kafka brokers, comma separated")
	fs.StringVar(&cfg.Events.Topic, "t", "", "kafka topic for order events")
	fs.DurationVar(&cfg.Events.DeliveryTimeout, "kt", 5*time.Second, "kafka delivery timeout for one event")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for env, dst := range map[string]*string{
		"RUN_ADDRESS":   &cfg.Handler.ServerAddr,
		"TOKEN_SECRET":  &cfg.Handler.TokenSecret,
		"DATABASE_URI":  &cfg.Store.DBDsn,
		"LOG_LEVEL":     &cfg.Logger.LogLevel,
		"BUSINESS_NAME": &cfg.Service.BusinessName,
		"TIME_ZONE":     &cfg.Service.TimeZone,
		"KAFKA_BROKERS": &cfg.Events.Brokers,
		"KAFKA_TOPIC":   &cfg.Events.Topic,
	} {
		if value, ok := lookupEnv(env); ok && value != "" {
			*dst = value
		}
	}
	if value, ok := lookupEnv("SECURE_COOKIE"); ok && value != "" {
		secure, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, err
		}
		cfg.Handler.SecureCookie = secure
	}

	if value, ok := lookupEnv("KAFKA_TIMEOUT"); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, err
		}
		cfg.Events.DeliveryTimeout = timeout
	}

	if cfg.Handler.TokenSecret == "" {
		return Config{}, ErrNoTokenSecret
	}
	return cfg, nil
}

// GetStoreConfig - только подключение к базе, для служебных команд
func GetStoreConfig(name string, args []string) (storeConfig.Config, error) {
	_ = godotenv.Load()

	var cfg storeConfig.Config
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.DBDsn, "d", "", "database connection string")
	if err := fs.Parse(args); err != nil {
		return storeConfig.Config{}, err
	}
	if value, ok := os.LookupEnv("DATABASE_URI"); ok && value != "" {
		cfg.DBDsn = value
	}
	return cfg, nil
}
