package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`
		// ConsoleKey must be sent as X-Console-Key by every console client.
		// Required unless Host is a loopback address.
		ConsoleKey string `yaml:"console_key"`
	} `yaml:"server"`
	API struct {
		BaseURL        string `yaml:"base_url"`
		ClientID       string `yaml:"client_id"`
		ClientSecret   string `yaml:"client_secret"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Storage struct {
		Driver    string `yaml:"driver"`
		StateFile string `yaml:"state_file"`
	} `yaml:"storage"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Dir is where environment files are looked up. Tests point it at a temp dir.
var Dir = filepath.Join("config", "envs")

func Load(env string) (*Config, error) {
	if env == "" {
		env = "local"
	}

	_ = godotenv.Load()

	configPath := filepath.Join(Dir, env+".yaml")

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", configPath, err)
	}

	// Environment overrides
	if url := os.Getenv("BUYTOWN_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if id := os.Getenv("BUYTOWN_CLIENT_ID"); id != "" {
		cfg.API.ClientID = id
	}
	if secret := os.Getenv("BUYTOWN_CLIENT_SECRET"); secret != "" {
		cfg.API.ClientSecret = secret
	}
	if driver := os.Getenv("BUYTOWN_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if file := os.Getenv("BUYTOWN_STATE_FILE"); file != "" {
		cfg.Storage.StateFile = file
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if host := os.Getenv("BUYTOWN_BIND_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if key := os.Getenv("BUYTOWN_CONSOLE_KEY"); key != "" {
		cfg.Server.ConsoleKey = key
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.StateFile == "" {
		c.Storage.StateFile = filepath.Join(".buytown", "session.json")
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "buytown:console:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.ClientID == "" || c.API.ClientSecret == "" {
		return errors.New("api.client_id and api.client_secret are required")
	}
	if !isLoopback(c.Server.Host) && c.Server.ConsoleKey == "" {
		return fmt.Errorf("server.console_key is required when listening on %s", c.Server.Host)
	}
	switch c.Storage.Driver {
	case "memory", "file":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	return nil
}

// Addr is the console listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// RequestTimeout returns the backend call timeout, zero meaning none.
func (c *Config) RequestTimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}
