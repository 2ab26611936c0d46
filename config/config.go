package config

import (
	"crypto/rsa"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
	"github.com/storyloom/storyloom-server/utils"
)

type Config struct {
	Port                string `env:"LISTEN_ADDR" envDefault:":3000"`
	Timeout             uint64 `env:"TIMEOUT" envDefault:"10"`
	ReadBufferSize      int    `env:"READ_BUFFER_SIZE" envDefault:"4096"`
	BodyLimit           int    `env:"BODY_LIMIT" envDefault:"1048576"`
	AppName             string `env:"APP_NAME" envDefault:"Storyloom"`
	IsProduction        bool   `env:"PRODUCTION"`
	Dsn                 string `env:"DSN"`
	RedisUrl            string `env:"REDIS_URL"`
	CookieKey           string `env:"COOKIE_KEY"`
	JwtPublicKey        string `env:"JWT_PUBLIC_KEY"`
	JwtPrivateKey       string `env:"JWT_PRIVATE_KEY"`
	JwtParsedPublicKey  *rsa.PublicKey
	JwtParsedPrivateKey *rsa.PrivateKey
	InviteConfig        InviteConfig `envPrefix:"INVITE_"`
	EmailConfig         EmailConfig  `envPrefix:"EMAIL_"`
}

type InviteConfig struct {
	Secret   string `env:"TOKEN_SECRET"`
	TtlHours int    `env:"TOKEN_TTL_HOURS" envDefault:"168"`
	BaseUrl  string `env:"BASE_URL"`
}

type EmailConfig struct {
	SmtpHost         string `env:"SMTP_HOST"`
	SmtpPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SmtpUser         string `env:"SMTP_USER"`
	SmtpPassword     string `env:"SMTP_PASSWORD"`
	SmtpSkipInsecure bool   `env:"SMTP_SKIP_INSECURE" envDefault:"false"`
}

func Parse() (*Config, error) {
	cfg := Config{
		IsProduction: utils.ParseFlags(),
	}

	if err := env.Parse(&cfg); err != nil {
		log.Panic().Err(err).Msg("Failed to parse env config")
	}

	cfg.JwtParsedPublicKey = utils.ParsePublicKey(cfg.JwtPublicKey)
	cfg.JwtParsedPrivateKey = utils.ParsePrivateKey(cfg.JwtPrivateKey)

	return &cfg, nil
}

func (c *Config) InviteTtl() time.Duration {
	return time.Hour * time.Duration(c.InviteConfig.TtlHours)
}
