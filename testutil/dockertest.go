package testutil

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/multierr"
)

// Cleanup stops and removes a container started by one of the TestWith helpers.
type Cleanup func() error

const (
	containerExpireSeconds    = 120
	containerNameCharacters   = "abcdefghijklmnopqrstuvwxyz"
	containerNameNanoIDLength = 16
)

func initDockertest(pool *dockertest.Pool) (*dockertest.Pool, error) {
	if pool == nil {
		var err error
		pool, err = dockertest.NewPool("")
		if err != nil {
			return nil, fmt.Errorf("could not construct pool: %w", err)
		}
	}

	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to Docker: %w", err)
	}
	return pool, nil
}

func containerName(service string) (string, error) {
	generateID, err := nanoid.CustomASCII(containerNameCharacters, containerNameNanoIDLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate container name: %w", err)
	}
	return fmt.Sprintf("studlyf-%s_%s", service, generateID()), nil
}

// runContainer starts opts and returns the resource with a cleanup that purges
// it. ready is retried until it succeeds; on failure the container is purged.
func runContainer(pool *dockertest.Pool, service string, opts *dockertest.RunOptions, ready func(*dockertest.Resource) error) (_ *dockertest.Resource, _ Cleanup, err error) {
	pool, err = initDockertest(pool)
	if err != nil {
		return nil, nil, err
	}

	opts.Name, err = containerName(service)
	if err != nil {
		return nil, nil, err
	}

	resource, err := pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not start %s: %w", service, err)
	}

	cleanup := func() error {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			return fmt.Errorf("could not purge %s: %w", service, purgeErr)
		}
		return nil
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, cleanup())
		}
	}()

	if err = resource.Expire(containerExpireSeconds); err != nil {
		return nil, nil, fmt.Errorf("could not set expiration time for %s: %w", service, err)
	}

	if err = pool.Retry(func() error { return ready(resource) }); err != nil {
		return nil, nil, fmt.Errorf("could not connect to %s: %w", service, err)
	}
	return resource, cleanup, nil
}
