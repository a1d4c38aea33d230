package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// RedisURL is the connection string of the order metadata store.
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`

	// Pronto holds the remote order API configuration.
	Pronto ProntoConfig `mapstructure:",squash"`

	// WooCommerce holds the WooCommerce API configuration.
	WooCommerce WooCommerceConfig `mapstructure:",squash"`

	// Mail holds the outbound SMTP configuration.
	Mail MailConfig `mapstructure:",squash"`

	// Approval holds the international approval gate configuration.
	Approval ApprovalConfig `mapstructure:",squash"`

	// Scheduler holds the polling scheduler configuration.
	Scheduler SchedulerConfig `mapstructure:",squash"`

	// Admin holds the credentials protecting administrative endpoints.
	Admin AdminConfig `mapstructure:",squash"`
}

// ProntoConfig holds the per-environment credentials for the Pronto API.
type ProntoConfig struct {
	// Environment is the default environment ("test" or "prod") used when an order does not pin one.
	Environment string `mapstructure:"PRONTO_ENV" default:"test"`
	// TestURL is the base URL of the Pronto test instance.
	TestURL string `mapstructure:"PRONTO_TEST_URL" required:"true"`
	// TestUser is the basic-auth user for the test instance.
	TestUser string `mapstructure:"PRONTO_TEST_USER" required:"true"`
	// TestPassword is the basic-auth password for the test instance.
	TestPassword string `mapstructure:"PRONTO_TEST_PASSWORD" required:"true"`
	// ProdURL is the base URL of the Pronto production instance.
	ProdURL string `mapstructure:"PRONTO_PROD_URL"`
	// ProdUser is the basic-auth user for the production instance.
	ProdUser string `mapstructure:"PRONTO_PROD_USER"`
	// ProdPassword is the basic-auth password for the production instance.
	ProdPassword string `mapstructure:"PRONTO_PROD_PASSWORD"`
	// Timeout bounds a single Pronto HTTP call.
	Timeout time.Duration `mapstructure:"PRONTO_TIMEOUT" default:"30s"`
	// Debtor is the customer account code orders are raised against.
	Debtor string `mapstructure:"PRONTO_DEBTOR" default:"WEB"`
	// TaxDivisor converts tax-inclusive prices to tax-exclusive ones.
	TaxDivisor string `mapstructure:"PRONTO_TAX_DIVISOR" default:"1.1"`
}

// WooCommerceConfig holds the credentials for the WooCommerce Store.
type WooCommerceConfig struct {
	// URL is the base URL of the WooCommerce store.
	URL string `mapstructure:"WC_URL" required:"true"`
	// ConsumerKey is the public key for API access.
	ConsumerKey string `mapstructure:"WC_CONSUMER_KEY" required:"true"`
	// ConsumerSecret is the secret key for API access.
	ConsumerSecret string `mapstructure:"WC_CONSUMER_SECRET" required:"true"`
}

// MailConfig holds SMTP delivery settings.
type MailConfig struct {
	Host     string `mapstructure:"SMTP_HOST" default:"localhost"`
	Port     int    `mapstructure:"SMTP_PORT" default:"587"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"MAIL_FROM" default:"orders@localhost"`
	// OpsEmail receives timeout and escalation alerts.
	OpsEmail string `mapstructure:"OPS_EMAIL" required:"true"`
}

// ApprovalConfig holds the settings of the international dealer workflow.
type ApprovalConfig struct {
	// DomesticCountry is the ISO country code treated as domestic.
	DomesticCountry string `mapstructure:"DOMESTIC_COUNTRY" default:"AU"`
	// DealerEmails maps country codes to dealer addresses, e.g. "NZ=nz@dealer.com,US=us@dealer.com".
	DealerEmails string `mapstructure:"DEALER_EMAILS"`
	// DealerDefaultEmail is used when a country has no dedicated dealer.
	DealerDefaultEmail string `mapstructure:"DEALER_DEFAULT_EMAIL"`
	// PublicURL is the externally reachable base URL used in action links.
	PublicURL string `mapstructure:"PUBLIC_URL" default:"http://localhost:8080"`
	// TokenSecret signs dealer action links.
	TokenSecret string `mapstructure:"ACTION_TOKEN_SECRET" required:"true"`
}

// SchedulerConfig holds the polling driver settings.
type SchedulerConfig struct {
	// Timezone is the site-local timezone used for checkpoints and business hours.
	Timezone string `mapstructure:"SITE_TIMEZONE" default:"Australia/Sydney"`
	// MinInterval is the self-throttle between two effective ticks.
	MinInterval time.Duration `mapstructure:"SCHEDULER_MIN_INTERVAL" default:"3s"`
	// TickInterval drives the in-process ticker; zero leaves ticking to POST /cron/tick.
	TickInterval time.Duration `mapstructure:"TICK_INTERVAL" default:"0s"`
	// CronToken authenticates external tick requests.
	CronToken string `mapstructure:"CRON_TOKEN"`
}

// AdminConfig holds basic-auth credentials for the admin endpoints.
type AdminConfig struct {
	User     string `mapstructure:"ADMIN_USER" default:"admin"`
	Password string `mapstructure:"ADMIN_PASSWORD" required:"true"`
}

// DealerAddressBook parses DealerEmails into an upper-cased country map.
func (c ApprovalConfig) DealerAddressBook() map[string]string {
	book := make(map[string]string)
	for _, pair := range strings.Split(c.DealerEmails, ",") {
		country, addr, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || country == "" || addr == "" {
			continue
		}
		book[strings.ToUpper(strings.TrimSpace(country))] = strings.TrimSpace(addr)
	}
	return book
}

// Location resolves the configured site timezone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if config.Pronto.Environment != "test" && config.Pronto.Environment != "prod" {
		return nil, fmt.Errorf("invalid PRONTO_ENV %q: must be test or prod", config.Pronto.Environment)
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("bind env %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
