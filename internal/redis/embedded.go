package redis

import (
	"errors"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	r "github.com/redis/go-redis/v9"
)

// embeddedClient talks to an in-process miniredis server that lives exactly
// as long as the client.
type embeddedClient struct {
	*r.Client
	server *miniredis.Miniredis
}

func newEmbeddedClient(config *RedisConfig) (*embeddedClient, error) {
	server, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("start embedded redis: %w", err)
	}

	options := &r.Options{
		Addr: server.Addr(),
		DB:   config.Database,
	}
	if config.DialTimeout > 0 {
		options.DialTimeout = config.DialTimeout
	}

	return &embeddedClient{
		Client: r.NewClient(options),
		server: server,
	}, nil
}

func (c *embeddedClient) Close() error {
	err := c.Client.Close()
	c.server.Close()
	if err != nil && !errors.Is(err, r.ErrClosed) {
		return err
	}
	return nil
}

// IsEmbedded reports whether client is backed by the in-process store.
func IsEmbedded(client Client) bool {
	_, ok := client.(*embeddedClient)
	return ok
}
