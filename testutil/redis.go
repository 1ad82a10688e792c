package testutil

import (
	"context"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

// TestWithRedis returns the address of a fresh redis server.
func TestWithRedis(pool *dockertest.Pool) (_ string, _ Cleanup, err error) {
	var addr string

	_, cleanup, err := runContainer(pool, "redis", &dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(r *dockertest.Resource) error {
		addr = r.GetHostPort("6379/tcp")
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		return "", nil, err
	}
	return addr, cleanup, nil
}

// chain runs every cleanup in order and joins their errors.
func chain(cleanups ...Cleanup) Cleanup {
	return func() error {
		var err error
		for _, c := range cleanups {
			err = multierr.Append(err, c())
		}
		return err
	}
}
