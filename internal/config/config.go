package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries every tunable of the service. Values come from the
// environment (see env tags); a local .env file is loaded first if present.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"spintowealth"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`

	JWTKey string `env:"JWT_KEY" envDefault:"dasdasdasdasdas"`

	Game Game `envPrefix:"GAME_"`
}

// Game holds the tuning constants of the crash and roulette games.
type Game struct {
	TickInterval    time.Duration `env:"TICK_INTERVAL" envDefault:"90ms"`
	BaseIncrease    float64       `env:"BASE_INCREASE" envDefault:"0.01"`
	AccelExponent   float64       `env:"ACCEL_EXPONENT" envDefault:"1.2"`
	StartingBalance float64       `env:"STARTING_BALANCE" envDefault:"1000"`
	RoulettePayout  float64       `env:"ROULETTE_PAYOUT" envDefault:"2"`
	QuickBets       []float64     `env:"QUICK_BETS" envDefault:"100,500,1000,2000" envSeparator:","`
	BetCooldown     time.Duration `env:"BET_COOLDOWN" envDefault:"1s"`
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB)
}

// Load reads the configuration from the environment. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
