package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL" envDefault:"storefront.db"`

	Redis    Redis    `envPrefix:"REDIS_"`
	Chain    Chain    `envPrefix:"CHAIN_"`
	Shopify  Shopify  `envPrefix:"SHOPIFY_"`
	Checkout Checkout `envPrefix:"CHECKOUT_"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Chain struct {
	RPCURL string `env:"RPC_URL"`
	ID     int64  `env:"ID" envDefault:"8453"`
	// USDC on Base
	TokenContract    string `env:"TOKEN_CONTRACT" envDefault:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
	PaymentRecipient string `env:"PAYMENT_RECIPIENT"`
}

type Shopify struct {
	Domain           string `env:"SITE_DOMAIN"`
	AccessToken      string `env:"ACCESS_TOKEN"`
	CollectionHandle string `env:"COLLECTION_HANDLE" envDefault:"frontpage"`
}

type Checkout struct {
	ReservationTTLSeconds int `env:"RESERVATION_TTL_SECONDS" envDefault:"900"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
