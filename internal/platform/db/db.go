package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"

	DefaultConfigPath = "config/config.yaml"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// sqlite3 のみ
	Path string `yaml:"path"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LoanConfig struct {
	PeriodDays int `yaml:"period_days"`
	// 未指定なら 3。0 は延長不可
	MaxRenewals *int `yaml:"max_renewals"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Auth        AuthConfig     `yaml:"auth"`
	Loans       LoanConfig     `yaml:"loans"`
	Server      ServerConfig   `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		return nil, fmt.Errorf("mode must be dev or release, got %q", cfg.Mode)
	}
	if *cfg.Loans.MaxRenewals < 0 {
		return nil, fmt.Errorf("loans.max_renewals must be >= 0, got %d", *cfg.Loans.MaxRenewals)
	}
	return &cfg, nil
}

// 秘匿値は環境変数を優先する
func (c *Config) applyEnv() {
	if v := os.Getenv("BOOKLEND_DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("BOOKLEND_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("BOOKLEND_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = DriverMySQL
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Loans.PeriodDays <= 0 {
		c.Loans.PeriodDays = 14
	}
	if c.Loans.MaxRenewals == nil {
		n := 3
		c.Loans.MaxRenewals = &n
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
}

// Connect opens a pool for the configured driver and verifies it with a ping.
func Connect(c DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := buildDSN(c)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(c.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", c.Driver, err)
	}

	if c.Driver == DriverSQLite {
		// 書き込みは単一コネクションで直列化する
		db.SetMaxOpenConns(1)
		return db, nil
	}

	// 接続プール（合算が max_connections を超えないよう配分する）
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

func buildDSN(c DatabaseConfig) (string, error) {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
			c.Username, c.Password, c.Host, c.Port, c.DBName), nil
	case DriverPostgres:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.Username, c.Password, c.Host, c.Port, c.DBName), nil
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return "", fmt.Errorf("database.path is required for %s", DriverSQLite)
		}
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", c.Path), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}
