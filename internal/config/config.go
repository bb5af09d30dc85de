package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Geo        GeoConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

// BillingConfig carries the billing defaults applied to new blocks when the
// organization has no prior subscription state to inherit from.
type BillingConfig struct {
	// DefaultSeatPrice is the monthly price per seat as a decimal string.
	DefaultSeatPrice string `validate:"required"`
	TrialDays        int    `validate:"gt=0"`
	PeacePeriodDays  int    `validate:"gt=0"`
}

type GeoConfig struct {
	Endpoint        string
	TimeoutSeconds  int
	CacheTTLMinutes int
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/seatbill")

	// Set up environment variables support
	v.SetEnvPrefix("SEATBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("billing.defaultseatprice", "39")
	v.SetDefault("billing.trialdays", 14)
	v.SetDefault("billing.peaceperioddays", 7)
	v.SetDefault("geo.timeoutseconds", 5)
	v.SetDefault("geo.cachettlminutes", 60)
}

func (c Configuration) Validate() error {
	if _, err := decimal.NewFromString(c.Billing.DefaultSeatPrice); err != nil {
		return fmt.Errorf("billing.defaultseatprice is not a valid decimal: %w", err)
	}
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultSeatPrice returns the configured price per seat as a decimal.
// Validate guarantees the string parses.
func (c BillingConfig) GetDefaultSeatPrice() decimal.Decimal {
	d, _ := decimal.NewFromString(c.DefaultSeatPrice)
	return d
}

// GetDefaultConfig returns a default configuration for local development.
// This is useful for running scripts or tests without a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Billing: BillingConfig{
			DefaultSeatPrice: "39",
			TrialDays:        14,
			PeacePeriodDays:  7,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User, c.Password, c.DBName, c.Host, c.Port, c.SSLMode,
	)
}
