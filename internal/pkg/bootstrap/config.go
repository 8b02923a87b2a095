package bootstrap

import (
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config 汇总了所有服务共享的配置。
// 基础设施地址放在 Infra 下，业务开关和外部协作方地址放在 App 下。
type Config struct {
	App   AppConfig   `yaml:"app"`
	Infra InfraConfig `yaml:"infra"`
}

type AppConfig struct {
	PaymentGatewayURL       string `yaml:"paymentGatewayUrl"`
	TelemetryWebhookURL     string `yaml:"telemetryWebhookUrl"`
	TelemetryTimeoutSeconds int    `yaml:"telemetryTimeoutSeconds"`
	CountdownSeconds        int    `yaml:"countdownSeconds"`

	// 银行转账确认页上展示的收款账户信息
	BankAccount BankAccountConfig `yaml:"bankAccount"`

	FeatureFlags FeatureFlags `yaml:"featureFlags"`
}

type BankAccountConfig struct {
	BankName string `yaml:"bankName"`
	Number   string `yaml:"number"`
	Holder   string `yaml:"holder"`
}

type FeatureFlags struct {
	// EnablePromotion 控制是否对外暴露当前生效的折扣活动
	EnablePromotion bool `yaml:"enablePromotion"`
}

type InfraConfig struct {
	Mysql  MysqlConfig  `yaml:"mysql"`
	Redis  RedisConfig  `yaml:"redis"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Jaeger JaegerConfig `yaml:"jaeger"`
}

type MysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addrs []string `yaml:"addrs"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

var currentConfig atomic.Value // *Config

// GetCurrentConfig 返回当前生效的配置快照，未加载时返回内置默认值。
func GetCurrentConfig() *Config {
	if c, ok := currentConfig.Load().(*Config); ok {
		return c
	}
	c := defaultConfig()
	currentConfig.Store(c)
	return c
}

// LoadConfig 从 CONFIG_PATH（默认 configs/config.yaml）读取配置并设为全局生效。
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_PATH", "configs/config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 没有配置文件时直接使用默认值，方便本地调试
			currentConfig.Store(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	currentConfig.Store(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			PaymentGatewayURL:       getEnv("PAYMENT_GATEWAY_URL", "http://localhost:9460"),
			TelemetryWebhookURL:     getEnv("TELEMETRY_WEBHOOK_URL", "http://localhost:9470/notify"),
			TelemetryTimeoutSeconds: 3,
			CountdownSeconds:        1800,
			BankAccount: BankAccountConfig{
				BankName: "KB Kookmin Bank",
				Number:   "123-456-789012",
				Holder:   "Mirae Studio Co., Ltd.",
			},
			FeatureFlags: FeatureFlags{EnablePromotion: true},
		},
		Infra: InfraConfig{
			Mysql:  MysqlConfig{DSN: getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/mirae?charset=utf8mb4&parseTime=True&loc=Local")},
			Redis:  RedisConfig{Addrs: []string{getEnv("REDIS_ADDR", "localhost:6379")}},
			Kafka:  KafkaConfig{Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")}},
			Jaeger: JaegerConfig{Endpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")},
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
