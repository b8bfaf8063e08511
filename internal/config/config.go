package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB"   envDefault:"coop"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"coop"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"coop"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisDB   int    `env:"REDIS_DB"   envDefault:"0"`

	IdempTTLSecs int `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	// Flat recommendation thresholds for the request evaluation screen.
	ApproveUpTo string `env:"APPROVE_UP_TO" envDefault:"500000"`
	ReviewUpTo  string `env:"REVIEW_UP_TO"  envDefault:"2000000"`
}

// Load reads .env (when present) and the environment. Defaults favor the
// docker-compose topology.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	approve, err := decimal.NewFromString(c.ApproveUpTo)
	if err != nil {
		return fmt.Errorf("invalid APPROVE_UP_TO %q: %w", c.ApproveUpTo, err)
	}
	review, err := decimal.NewFromString(c.ReviewUpTo)
	if err != nil {
		return fmt.Errorf("invalid REVIEW_UP_TO %q: %w", c.ReviewUpTo, err)
	}
	if review.LessThan(approve) {
		return errors.New("REVIEW_UP_TO must not be below APPROVE_UP_TO")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// Thresholds returns the parsed recommendation cutoffs. Validate has already
// guaranteed both parse.
func (c *Config) Thresholds() (approveUpTo, reviewUpTo decimal.Decimal) {
	approveUpTo, _ = decimal.NewFromString(c.ApproveUpTo)
	reviewUpTo, _ = decimal.NewFromString(c.ReviewUpTo)
	return approveUpTo, reviewUpTo
}
