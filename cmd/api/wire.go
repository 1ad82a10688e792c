package main

import (
	"context"
	"fmt"

	config "github.com/anjiri1684/studlyf_network/configs"
	"github.com/anjiri1684/studlyf_network/auth"
	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stores struct {
	messages    database.MessageStore
	connections database.ConnectionStore
	profiles    database.ProfileStore

	db    *gorm.DB
	mongo *mongo.Client
}

func (s *stores) Close() error {
	var err error
	if s.mongo != nil {
		err = multierr.Append(err, s.mongo.Disconnect(context.Background()))
	}
	if s.db != nil {
		if sqlDB, dbErr := s.db.DB(); dbErr == nil {
			err = multierr.Append(err, sqlDB.Close())
		}
	}
	return err
}

// openStores connects the backends named by store.driver (profiles and the
// connection graph) and store.message_driver.
func openStores(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*stores, error) {
	retention := database.Retention{TTL: cfg.Store.Retention}
	st := &stores{}

	if cfg.Store.Driver == "postgres" || cfg.Store.MessageDriver == "postgres" {
		db, err := database.ConnectDB(cfg.Store.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		st.db = db
		if err := database.Migrate(db); err != nil {
			return nil, multierr.Append(err, st.Close())
		}
	}

	switch cfg.Store.Driver {
	case "postgres":
		st.profiles = database.NewGormProfileStore(st.db)
		st.connections = database.NewGormConnectionStore(st.db, retention)
	default:
		log.Warn("Using in-memory profile and connection stores")
		st.profiles = database.NewMemoryProfileStore()
		st.connections = database.NewMemoryConnectionStore(retention)
	}

	switch cfg.Store.MessageDriver {
	case "postgres":
		st.messages = database.NewPostgresMessageStore(st.db, retention)
	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, multierr.Append(err, st.Close())
		}
		st.mongo = client
		ms, err := database.NewMongoMessageStore(ctx, client.Database(cfg.Store.MongoDatabase), retention)
		if err != nil {
			return nil, multierr.Append(err, st.Close())
		}
		st.messages = ms
	default:
		log.Warn("Using in-memory message store")
		st.messages = database.NewMemoryMessageStore(retention)
	}

	log.Infow("Stores ready", "driver", cfg.Store.Driver, "messages", cfg.Store.MessageDriver)
	return st, nil
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.Auth.Provider {
	case "firebase":
		return auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID)
	case "jwt":
		return auth.NewJWTVerifier(cfg.Auth.JWTSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

func newAssetStore(ctx context.Context, cfg *config.Config) (storage.AssetStore, error) {
	switch cfg.Assets.Driver {
	case "cloudinary":
		return storage.NewCloudinaryStore(cfg.Assets.CloudinaryURL)
	case "s3":
		return storage.NewS3Store(ctx, cfg.Assets.S3Region, cfg.Assets.S3Bucket, cfg.Assets.S3Endpoint)
	default:
		return storage.NewLocalStore(cfg.Assets.LocalDir, cfg.Assets.PublicBaseURL)
	}
}
