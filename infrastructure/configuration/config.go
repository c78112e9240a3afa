package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"post-manager/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:"app" json:"app"`
	LinkedIn    LinkedIn    `mapstructure:"linkedin" json:"linkedin"`
	Store       Store       `mapstructure:"store" json:"store"`
	Database    Database    `mapstructure:"database" json:"database"`
	RedisClient RedisClient `mapstructure:"redisClient" json:"redisClient"`
	Cascade     Cascade     `mapstructure:"cascade" json:"cascade"`
	Simulation  Simulation  `mapstructure:"simulation" json:"simulation"`
	Session     Session     `mapstructure:"session" json:"session"`
	Logger      Logger      `mapstructure:"logger" json:"logger"`
	Cors        Cors        `mapstructure:"cors" json:"cors"`
}

type App struct {
	Port        int    `mapstructure:"port" json:"port"`
	SecretKey   string `mapstructure:"secretKey" json:"secretKey"`
	TLSEnabled  bool   `mapstructure:"tlsEnabled" json:"tlsEnabled"`
	TLSCertFile string `mapstructure:"tlsCertFile" json:"tlsCertFile"`
	TLSKeyFile  string `mapstructure:"tlsKeyFile" json:"tlsKeyFile"`
}

// LinkedIn holds the OAuth client and API endpoints.
type LinkedIn struct {
	ClientID        string `mapstructure:"clientId" json:"clientId"`
	ClientSecret    string `mapstructure:"clientSecret" json:"clientSecret"`
	RedirectURI     string `mapstructure:"redirectUri" json:"redirectUri"`
	Scope           string `mapstructure:"scope" json:"scope"`
	AuthEndpoint    string `mapstructure:"authEndpoint" json:"authEndpoint"`
	TokenEndpoint   string `mapstructure:"tokenEndpoint" json:"tokenEndpoint"`
	APIBaseURL      string `mapstructure:"apiBaseUrl" json:"apiBaseUrl"`
	ProxyBaseURL    string `mapstructure:"proxyBaseUrl" json:"proxyBaseUrl"`
	ExchangeMode    string `mapstructure:"exchangeMode" json:"exchangeMode"` // simulated | backend | oauth2
	ExchangeURL     string `mapstructure:"exchangeUrl" json:"exchangeUrl"`
	LiveWrites      bool   `mapstructure:"liveWrites" json:"liveWrites"`
	PreferredLocale string `mapstructure:"preferredLocale" json:"preferredLocale"`
}

// Store selects where session state lives: memory | disk | redis | postgres | mssql.
type Store struct {
	Driver    string `mapstructure:"driver" json:"driver"`
	KeyPrefix string `mapstructure:"keyPrefix" json:"keyPrefix"`
	DiskPath  string `mapstructure:"diskPath" json:"diskPath"`
}

type Database struct {
	Psql  Db `mapstructure:"psql" json:"psql"`
	Mssql Db `mapstructure:"mssql" json:"mssql"`
}

type Db struct {
	Name     string `mapstructure:"name" json:"name"`
	Host     string `mapstructure:"host" json:"host"`
	Port     string `mapstructure:"port" json:"port"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"password"`
	SSLMode  string `mapstructure:"sslMode" json:"sslMode"`
}

type RedisClient struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     string `mapstructure:"port" json:"port"`
	Password string `mapstructure:"password" json:"password"`
	Username string `mapstructure:"username" json:"username"`
	DB       int    `mapstructure:"db" json:"db"`
}

// Cascade controls endpoint ordering and per attempt limits.
type Cascade struct {
	PostPriority      []string      `mapstructure:"postPriority" json:"postPriority"`
	ScheduledPriority []string      `mapstructure:"scheduledPriority" json:"scheduledPriority"`
	AttemptTimeout    time.Duration `mapstructure:"attemptTimeout" json:"attemptTimeout"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute" json:"requestsPerMinute"`
	Burst             int           `mapstructure:"burst" json:"burst"`
}

type Simulation struct {
	Delay time.Duration `mapstructure:"delay" json:"delay"`
}

type Session struct {
	ManualTokenTTL time.Duration `mapstructure:"manualTokenTTL" json:"manualTokenTTL"`
	DefaultExpiry  time.Duration `mapstructure:"defaultExpiry" json:"defaultExpiry"`
}

type Logger struct {
	Format string `mapstructure:"format" json:"format"`
	Level  string `mapstructure:"level" json:"level"`
}

type Cors struct {
	AllowOrigins []string `mapstructure:"allowOrigins" json:"allowOrigins"`
}

// LoadConfig reads config.json (or config-<ENV>.json), applies defaults and environment overrides.
// A missing config file is not an error.
func LoadConfig() (*Config, error) {
	v := viper.New()
	name := getConfig()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("read config %s: %w", name, err)
		}
	} else {
		logger.GetLogger().WithField("config", v.ConfigFileUsed()).Info("Config set up successfully")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	initApp(&c)
	initLinkedIn(&c)
	initDatabase(&c)
	return &c, nil
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 10001)
	v.SetDefault("app.tlsEnabled", false)

	v.SetDefault("linkedin.scope", "r_emailaddress r_liteprofile w_member_social")
	v.SetDefault("linkedin.authEndpoint", "https://www.linkedin.com/oauth/v2/authorization")
	v.SetDefault("linkedin.tokenEndpoint", "https://www.linkedin.com/oauth/v2/accessToken")
	v.SetDefault("linkedin.apiBaseUrl", "https://api.linkedin.com/v2")
	v.SetDefault("linkedin.exchangeMode", "simulated")
	v.SetDefault("linkedin.liveWrites", false)
	v.SetDefault("linkedin.preferredLocale", "en_US")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.keyPrefix", "")
	v.SetDefault("store.diskPath", "data/session")

	v.SetDefault("database.psql.port", "5432")
	v.SetDefault("database.psql.sslMode", "disable")
	v.SetDefault("database.mssql.port", "1433")
	v.SetDefault("redisClient.host", "localhost")
	v.SetDefault("redisClient.port", "6379")

	v.SetDefault("cascade.postPriority", DefaultPostPriority)
	v.SetDefault("cascade.scheduledPriority", DefaultScheduledPriority)
	v.SetDefault("cascade.attemptTimeout", 10*time.Second)
	v.SetDefault("cascade.requestsPerMinute", 60)
	v.SetDefault("cascade.burst", 5)

	v.SetDefault("simulation.delay", 800*time.Millisecond)

	v.SetDefault("session.manualTokenTTL", 24*time.Hour)
	v.SetDefault("session.defaultExpiry", time.Hour)

	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.level", "info")

	v.SetDefault("cors.allowOrigins", []string{"http://localhost:4200", "http://localhost:8080", "http://127.0.0.1:8080"})
}

var (
	DefaultPostPriority = []string{
		"shares", "ugc-posts", "structured-feed", "connections-combined", "generic-log", "settings-blob", "profile-only",
	}
	DefaultScheduledPriority = []string{"ugc-posts", "structured-feed", "settings-blob"}
)

func initApp(c *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.App.Port = p
		}
	}
	if c.App.Port == 0 {
		c.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			c.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			c.App.TLSEnabled = false
		}
	}
	if c.App.TLSCertFile == "" {
		c.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if c.App.TLSKeyFile == "" {
		c.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if c.App.TLSEnabled {
		logger.GetLogger().WithFields(map[string]interface{}{"cert": c.App.TLSCertFile, "key": c.App.TLSKeyFile}).Info("TLS enabled via configuration")
	}
	if c.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; session tokens are disabled and /api is open to local callers")
	}
}

func initDatabase(c *Config) {
	c.Database.Psql.Name = getConfigValue(c.Database.Psql.Name, "DB_NAME", "")
	c.Database.Psql.Host = getConfigValue(c.Database.Psql.Host, "DB_HOST", "localhost")
	c.Database.Psql.Port = getConfigValue(c.Database.Psql.Port, "DB_PORT", "5432")
	c.Database.Psql.User = getConfigValue(c.Database.Psql.User, "DB_USER", "")
	c.Database.Psql.Password = getConfigValue(c.Database.Psql.Password, "DB_PASSWORD", "")

	c.Database.Mssql.Name = getConfigValue(c.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	c.Database.Mssql.Host = getConfigValue(c.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	c.Database.Mssql.Port = getConfigValue(c.Database.Mssql.Port, "MSSQL_PORT", "1433")
	c.Database.Mssql.User = getConfigValue(c.Database.Mssql.User, "MSSQL_USER", "sa")
	c.Database.Mssql.Password = getConfigValue(c.Database.Mssql.Password, "MSSQL_PASSWORD", "")
}

// helpers to coerce local callback to https
func hasHTTPS(u string) bool { return strings.HasPrefix(u, "https://") }

func toHTTPSCallback(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
