package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config reúne a configuração da API, lida das variáveis de ambiente.
type Config struct {
	// HTTP
	Porta       string `envconfig:"PORT" default:"8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// Banco
	CaminhoBanco string `envconfig:"DATABASE_PATH" default:"./gestao-juridica.db"`

	// Redis. Sem endereços o armazenamento local fica em memória.
	RedisEnderecos []string `envconfig:"REDIS_ADDRS"`
	RedisSenha     string   `envconfig:"REDIS_PASSWORD"`
	RedisDB        int      `envconfig:"REDIS_DB" default:"0"`

	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"10080"`

	// Administrador
	AdminEmail string `envconfig:"ADMIN_EMAIL" default:"marcelusluna09@gmail.com"`
	AdminSenha string `envconfig:"ADMIN_PASSWORD" default:"Ms091098@"`

	// Stripe
	StripeSecretKey     string            `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string            `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceIDs      map[string]string `envconfig:"STRIPE_PRICE_IDS"`
}

// ValidadeToken é a duração dos tokens de sessão.
func (c Config) ValidadeToken() time.Duration {
	return time.Duration(c.JWTExpireMin) * time.Minute
}

// Load lê o arquivo .env, se existir, e depois o ambiente.
func Load(arquivos ...string) (Config, error) {
	if err := godotenv.Load(arquivos...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		slog.Debug("Arquivo .env não encontrado, usando apenas o ambiente")
	}

	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
