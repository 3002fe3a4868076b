package config

type Config struct {
	ServerAddr string
	// Ключ подписи токена и cookie сессии
	TokenSecret string
	// Cookie только по HTTPS
	SecureCookie bool
}
