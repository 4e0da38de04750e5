package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "doctor-registry/internal/common/config"
)

// Config doctor-registry 客户端工具配置
type Config struct {
	API struct {
		BaseURL    string
		Token      string
		Timeout    time.Duration
		RetryCount int
	}
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	MQTT         commoncfg.MQTTConfig
	Cache        struct {
		TTL       time.Duration
		Namespace string
	}
	Notify struct {
		Mode     string // none | redis | mqtt
		Stream   string
		Group    string
		Consumer string
	}
	Editor struct {
		HiddenFields string // omit | null
		DeriveCURP   bool
	}
	Audit struct {
		ConfirmPhrase string
	}
	Log struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = getEnv("API_BASE_URL", "http://127.0.0.1:8000")
	cfg.API.Token = getEnv("API_TOKEN", "")
	cfg.API.Timeout = time.Duration(parseInt(getEnv("API_TIMEOUT_SECONDS", "30"), 30)) * time.Second
	cfg.API.RetryCount = parseInt(getEnv("API_RETRY_COUNT", "3"), 3)

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "registry",
		SSLMode:  "disable",
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.Cache.TTL = time.Duration(parseInt(getEnv("CACHE_TTL_SECONDS", "300"), 300)) * time.Second
	cfg.Cache.Namespace = getEnv("CACHE_NAMESPACE", "doctor-registry:")

	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "doctor-registry",
		Topic:    "doctor-registry/changes",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Notify.Mode = getEnv("NOTIFY_MODE", "none")
	cfg.Notify.Stream = getEnv("NOTIFY_STREAM", "doctor-registry:changes")
	cfg.Notify.Group = getEnv("NOTIFY_GROUP", "doctorctl-watch")
	cfg.Notify.Consumer = getEnv("NOTIFY_CONSUMER", defaultConsumerName())

	cfg.Editor.HiddenFields = getEnv("EDITOR_HIDDEN_FIELDS", "omit")
	cfg.Editor.DeriveCURP = getEnv("EDITOR_DERIVE_CURP", "true") == "true"

	cfg.Audit.ConfirmPhrase = getEnv("AUDIT_CONFIRM_PHRASE", "ELIMINAR REGISTROS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	return cfg
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "doctorctl"
	}
	return "doctorctl-" + host
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
