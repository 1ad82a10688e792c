package testutil

import (
	"context"
	"fmt"

	"github.com/anjiri1684/studlyf_network/database"
	"github.com/ory/dockertest/v3"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestWithMongo(pool *dockertest.Pool) (_ *mongo.Client, _ Cleanup, err error) {
	var client *mongo.Client

	_, cleanup, err := runContainer(pool, "mongo", &dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, func(r *dockertest.Resource) error {
		uri := fmt.Sprintf("mongodb://%s", r.GetHostPort("27017/tcp"))
		c, retryErr := database.ConnectMongo(context.Background(), uri)
		if retryErr != nil {
			return retryErr
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	disconnect := func() error {
		return client.Disconnect(context.Background())
	}
	return client, chain(disconnect, cleanup), nil
}
