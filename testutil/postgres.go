package testutil

import (
	"fmt"

	"github.com/anjiri1684/studlyf_network/database"
	"github.com/ory/dockertest/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestWithPostgres starts postgres, migrates every gorm model and returns the
// connection.
func TestWithPostgres(pool *dockertest.Pool) (_ *gorm.DB, _ Cleanup, err error) {
	var db *gorm.DB
	log := zap.NewNop().Sugar()

	_, cleanup, err := runContainer(pool, "postgres", &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=password",
			"POSTGRES_DB=studlyf",
		},
	}, func(r *dockertest.Resource) error {
		dsn := fmt.Sprintf("postgres://user:password@%s/studlyf?sslmode=disable", r.GetHostPort("5432/tcp"))
		conn, retryErr := database.ConnectDB(dsn, log)
		if retryErr != nil {
			return retryErr
		}
		sqlDB, retryErr := conn.DB()
		if retryErr != nil {
			return retryErr
		}
		if retryErr = sqlDB.Ping(); retryErr != nil {
			_ = sqlDB.Close()
			return retryErr
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("could not migrate: %w", err), cleanup())
	}
	return db, cleanup, nil
}
