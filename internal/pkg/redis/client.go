package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 是对 go-redis UniversalClient 的一层薄封装。
// 传入单个地址时表现为单机客户端，多个地址时自动切换为集群模式。
type Client struct {
	rdb redis.UniversalClient
}

func NewClient(addrs []string) (*Client, error) {
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: addrs,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis %v: %w", addrs, err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) GetClient() redis.UniversalClient {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
