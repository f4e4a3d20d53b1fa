package config

import (
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	ZMQAddr       string `env:"ZMQ_ADDR" env-default:"tcp://192.168.10.100:5555"`
	KafkaBrokers  string `env:"KAFKA_ADDRESS" env-default:"localhost:9092"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"1"`

	// MetaPrefix namespaces the ancillary metadata keys.
	MetaPrefix string `env:"META_PREFIX" env-default:"ALS832:TomoStream:"`

	ProjectionChannel string `env:"PROJ_CHANNEL" env-default:"tomostreamdata:proj:image"`
	WhiteChannel      string `env:"WHITE_CHANNEL" env-default:"tomostreamdata:white:image"`
	DarkChannel       string `env:"DARK_CHANNEL" env-default:"tomostreamdata:dark:image"`
	ThetaChannel      string `env:"THETA_CHANNEL" env-default:"tomostreamdata:theta:image"`

	// PollInterval is the fixed sleep at the top of each loop cycle.
	PollInterval time.Duration `env:"POLL_INTERVAL" env-default:"10ms"`

	Host string `env:"ENV_HOST" env-default:"0.0.0.0"`
	Port string `env:"ENV_PORT" env-default:"8080"`
}

func MustNew() *Config {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Brokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}
