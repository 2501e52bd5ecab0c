package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the POS system
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Loyalty    LoyaltyConfig    `yaml:"loyalty"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// RestaurantConfig holds the restaurant identity printed on receipts
type RestaurantConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// PricingConfig holds the rates applied to the post-discount subtotal
type PricingConfig struct {
	TaxRate           decimal.Decimal `yaml:"tax_rate"`
	ServiceChargeRate decimal.Decimal `yaml:"service_charge_rate"`
}

// LoyaltyConfig holds the cumulative spend thresholds for tier upgrades
type LoyaltyConfig struct {
	SilverThreshold   decimal.Decimal `yaml:"silver_threshold"`
	GoldThreshold     decimal.Decimal `yaml:"gold_threshold"`
	PlatinumThreshold decimal.Decimal `yaml:"platinum_threshold"`
}

// Load reads configuration from a YAML file and applies environment overrides
func Load(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := &Config{}
	scanner := bufio.NewScanner(file)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Check for section headers
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			currentSection = strings.TrimSuffix(line, ":")
			continue
		}

		// Parse key-value pairs
		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if err := config.setValue(currentSection, key, value); err != nil {
				return nil, fmt.Errorf("failed to set config value %s.%s: %w", currentSection, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyEnvOverrides()

	return config, nil
}

// setValue sets a configuration value based on section and key
func (c *Config) setValue(section, key, value string) error {
	switch section {
	case "database":
		return c.setDatabaseValue(key, value)
	case "rabbitmq":
		return c.setRabbitMQValue(key, value)
	case "restaurant":
		return c.setRestaurantValue(key, value)
	case "pricing":
		return c.setPricingValue(key, value)
	case "loyalty":
		return c.setLoyaltyValue(key, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

// setDatabaseValue sets database configuration values
func (c *Config) setDatabaseValue(key, value string) error {
	switch key {
	case "host":
		c.Database.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.Database.Port = port
	case "user":
		c.Database.User = value
	case "password":
		c.Database.Password = value
	case "database":
		c.Database.Database = value
	default:
		return fmt.Errorf("unknown database key: %s", key)
	}
	return nil
}

// setRabbitMQValue sets RabbitMQ configuration values
func (c *Config) setRabbitMQValue(key, value string) error {
	switch key {
	case "host":
		c.RabbitMQ.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.RabbitMQ.Port = port
	case "user":
		c.RabbitMQ.User = value
	case "password":
		c.RabbitMQ.Password = value
	default:
		return fmt.Errorf("unknown rabbitmq key: %s", key)
	}
	return nil
}

// setRestaurantValue sets restaurant identity values
func (c *Config) setRestaurantValue(key, value string) error {
	switch key {
	case "name":
		c.Restaurant.Name = value
	case "currency":
		c.Restaurant.Currency = value
	default:
		return fmt.Errorf("unknown restaurant key: %s", key)
	}
	return nil
}

// setPricingValue sets pricing rate values
func (c *Config) setPricingValue(key, value string) error {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid rate value: %w", err)
	}
	switch key {
	case "tax_rate":
		c.Pricing.TaxRate = rate
	case "service_charge_rate":
		c.Pricing.ServiceChargeRate = rate
	default:
		return fmt.Errorf("unknown pricing key: %s", key)
	}
	return nil
}

// setLoyaltyValue sets loyalty threshold values
func (c *Config) setLoyaltyValue(key, value string) error {
	threshold, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid threshold value: %w", err)
	}
	switch key {
	case "silver_threshold":
		c.Loyalty.SilverThreshold = threshold
	case "gold_threshold":
		c.Loyalty.GoldThreshold = threshold
	case "platinum_threshold":
		c.Loyalty.PlatinumThreshold = threshold
	default:
		return fmt.Errorf("unknown loyalty key: %s", key)
	}
	return nil
}

// applyEnvOverrides lets secrets come from the environment (.env or real env)
// instead of the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POS_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("POS_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("POS_RABBITMQ_PASSWORD"); v != "" {
		c.RabbitMQ.Password = v
	}
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
