package sink

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisMeta writes ancillary scalars to the process-wide metadata store
// under a configured key namespace.
type RedisMeta struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisMeta(client *redis.Client, prefix string, logger *zap.Logger) *RedisMeta {
	return &RedisMeta{
		client: client,
		prefix: prefix,
		logger: logger.Named("meta"),
	}
}

func (m *RedisMeta) Put(key string, value any) error {
	cmd := m.client.Set(context.Background(), m.prefix+key, value, 0)
	if err := cmd.Err(); err != nil {
		return err
	}
	return nil
}
