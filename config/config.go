package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Session   SessionConfig   `mapstructure:"session"`
	ML        MLConfig        `mapstructure:"ml"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// AppConfig общие настройки окружения
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsProduction сообщает, запущен ли сервис в production
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// PostgresConfig содержит настройки для PostgreSQL
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит настройки для Redis (хранилище сессий)
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig содержит настройки HTTP API
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// MetricsConfig содержит настройки сервера метрик Prometheus
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// SessionConfig содержит настройки cookie-сессий
type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
	Secure     bool          `mapstructure:"secure"`
}

// MLConfig содержит адрес и таймауты внешнего ML-сервиса
type MLConfig struct {
	URL            string        `mapstructure:"url"`
	PredictTimeout time.Duration `mapstructure:"predict_timeout"`
	TrainTimeout   time.Duration `mapstructure:"train_timeout"`
	HealthTimeout  time.Duration `mapstructure:"health_timeout"`
}

// CORSConfig содержит список разрешенных источников фронтенда
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig ограничивает частоту запросов к эндпоинтам аутентификации
type RateLimitConfig struct {
	AuthRequests int           `mapstructure:"auth_requests"`
	AuthWindow   time.Duration `mapstructure:"auth_window"`
}

// LoadConfig загружает настройки из .env, файла config.yaml и переменных окружения
func LoadConfig() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	loadFromEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.App.IsProduction() {
		config.Session.Secure = true
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	// PostgreSQL defaults
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.username", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "bubbly")
	v.SetDefault("postgres.sslmode", "disable")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("http.port", 3000)
	v.SetDefault("metrics.port", 9100)

	v.SetDefault("session.secret", "bubble-secret-key")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "bubbly.sid")
	v.SetDefault("session.secure", false)

	v.SetDefault("ml.url", "http://localhost:5001")
	v.SetDefault("ml.predict_timeout", 5*time.Second)
	v.SetDefault("ml.train_timeout", 60*time.Second)
	v.SetDefault("ml.health_timeout", 2*time.Second)

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:5174",
		"http://localhost:5175",
	})

	v.SetDefault("ratelimit.auth_requests", 10)
	v.SetDefault("ratelimit.auth_window", time.Minute)
}

func loadFromEnv(v *viper.Viper) {
	if env := os.Getenv("APP_ENV"); env != "" {
		v.Set("app.env", env)
	} else if env := os.Getenv("NODE_ENV"); env != "" {
		v.Set("app.env", env)
	}

	// PostgreSQL from env
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		v.Set("postgres.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			v.Set("postgres.port", port)
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		v.Set("postgres.username", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		v.Set("postgres.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		v.Set("postgres.dbname", dbName)
	}

	// Redis from env
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisPort := "6379"
		if port := os.Getenv("REDIS_PORT"); port != "" {
			redisPort = port
		}
		v.Set("redis.addr", redisHost+":"+redisPort)
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("http.port", p)
		}
	}
	if port := os.Getenv("METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("metrics.port", p)
		}
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		v.Set("session.secret", secret)
	}
	if mlURL := os.Getenv("ML_SERVICE_URL"); mlURL != "" {
		v.Set("ml.url", strings.TrimRight(mlURL, "/"))
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		v.Set("cors.allowed_origins", strings.Split(origins, ","))
	}
}
