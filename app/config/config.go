package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       Log       `yaml:"log"`
	LLM       LLM       `yaml:"llm"`
	Call      Call      `yaml:"call"`
	Ledger    Ledger    `yaml:"ledger"`
	Inventory Inventory `yaml:"inventory"`
	Server    Server    `yaml:"server"`
}

type LLM struct {
	// Disable the advisory model entirely, rule-based interpretation only
	Disabled bool `yaml:"disabled" example:"false"`
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// API token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// Model name
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free"`
	// Hard timeout for a single advisory call
	Timeout time.Duration `yaml:"timeout" example:"5s"`
}

type Call struct {
	// Company name spoken in the greeting
	CompanyName string `yaml:"company_name" example:"Bio Mac Lifesciences" validate:"required"`
	// Currency code recorded with every quote
	Currency string `yaml:"currency" example:"INR" validate:"required"`
	// Uninformative turns allowed on one item before force-advancing
	RetryCeiling int `yaml:"retry_ceiling" example:"3" validate:"min=1"`
	// Total turns allowed in one session
	TurnBudget int `yaml:"turn_budget" example:"30" validate:"min=1"`
	// Wall-clock budget for one session
	DurationBudget time.Duration `yaml:"duration_budget" example:"10m"`
}

type Ledger struct {
	// Path of the append-only quotes CSV
	Path string `yaml:"path" example:"data/quotes_live.csv" validate:"required"`
}

type Inventory struct {
	// Path of the requirements YAML
	Path string `yaml:"path" example:"data/requirements.yaml" validate:"required"`
}

type Server struct {
	// Listen address of the webhook server
	Addr string `yaml:"addr" example:":5000" validate:"required"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

func LoadFile(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.ApplyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) ApplyDefaults() {
	if c.Call.Currency == "" {
		c.Call.Currency = "INR"
	}
	if c.Call.RetryCeiling == 0 {
		c.Call.RetryCeiling = 3
	}
	if c.Call.TurnBudget == 0 {
		c.Call.TurnBudget = 30
	}
	if c.Call.DurationBudget == 0 {
		c.Call.DurationBudget = 10 * time.Minute
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 5 * time.Second
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = "data/quotes_live.csv"
	}
	if c.Inventory.Path == "" {
		c.Inventory.Path = "data/requirements.yaml"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
}
