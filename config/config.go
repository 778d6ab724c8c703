package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyOwnerID        = "owner.id"
	KeyDatabasePath   = "database.path"
	KeyCurrency       = "currency"
	KeyImportTimezone = "import.timezone"
	KeyImportMaxRows  = "import.max_rows"
	KeyServerPort     = "server.port"
	KeyRules          = "rules"

	EnvPrefix = "SHOPDASH"
)

type Config struct {
	Owner    OwnerConfig    `mapstructure:"owner"`
	Database DatabaseConfig `mapstructure:"database"`
	Currency string         `mapstructure:"currency" validate:"required,len=3,uppercase"`
	Import   ImportConfig   `mapstructure:"import"`
	Server   ServerConfig   `mapstructure:"server"`
	Rules    []Rule         `mapstructure:"rules"`
}

type OwnerConfig struct {
	ID string `mapstructure:"id" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type ImportConfig struct {
	Timezone string `mapstructure:"timezone" validate:"required"`
	MaxRows  int    `mapstructure:"max_rows" validate:"gte=0"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// Rule selects a mapper for files whose name matches FileTemplate.
type Rule struct {
	Name         string `mapstructure:"name"`
	Mapper       string `mapstructure:"mapper"`
	FileTemplate string `mapstructure:"file_template"`
}

// Location resolves the import time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Import.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.Import.Timezone, err)
	}
	return loc, nil
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// BindEnv maps SHOPDASH_OWNER_ID style variables onto config keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return ExampleYAMLForOwner("default")
}

// ExampleYAMLForOwner returns the configuration template seeded with ownerID.
func ExampleYAMLForOwner(ownerID string) string {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		ownerID = "default"
	}
	return fmt.Sprintf(`# shopdash configuration
owner:
  id: %q

database:
  path: "./shopdash.db"

currency: "THB"

import:
  timezone: "Asia/Bangkok"
  max_rows: 100000

server:
  port: 8080

rules:
  - name: "tiktok"
    mapper: "tiktok"
    file_template: "*TikTok*.xlsx"
  - name: "shopee"
    mapper: "shopee"
    file_template: "Order.all.*.xlsx"
`, ownerID)
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateRules(cfg.Rules); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyOwnerID, "default")
	v.SetDefault(KeyDatabasePath, "./shopdash.db")
	v.SetDefault(KeyCurrency, "THB")
	v.SetDefault(KeyImportTimezone, "Asia/Bangkok")
	v.SetDefault(KeyImportMaxRows, 100000)
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeyRules, []map[string]any{})
}

func validateRules(rules []Rule) error {
	validMappers := map[string]bool{
		"tiktok":  true,
		"shopee":  true,
		"generic": true,
	}
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return fmt.Errorf("validation failed: rules[%d].name is required", i)
		}
		key := strings.ToLower(name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate rule name %q", name)
		}
		seen[key] = struct{}{}
		mapper := strings.ToLower(strings.TrimSpace(rule.Mapper))
		if mapper == "" {
			return fmt.Errorf("validation failed: rules[%d].mapper is required", i)
		}
		if !validMappers[mapper] {
			return fmt.Errorf(
				"validation failed: rules[%d].mapper %q is not supported (valid: tiktok, shopee, generic)",
				i,
				rule.Mapper,
			)
		}
		if strings.TrimSpace(rule.FileTemplate) == "" {
			return fmt.Errorf("validation failed: rules[%d].file_template is required", i)
		}
	}
	return nil
}
