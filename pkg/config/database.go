package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections. Mongo is nil unless blogs are stored there.
type DB struct {
	SQL           *gorm.DB
	Mongo         *mongo.Client
	MongoDatabase string
}

// InitDB opens the relational store and, when BLOG_STORE=mongo, MongoDB.
func InitDB(cfg *Config) (*DB, error) {
	sqlDB, err := OpenSQL(cfg.DBDriver, cfg.PostgresConnStr, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	db := &DB{SQL: sqlDB, MongoDatabase: cfg.MongoDatabase}

	if cfg.BlogStore == "mongo" {
		if cfg.MongoURI == "" {
			db.CloseDB()
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		if db.Mongo, err = initMongo(cfg.MongoURI); err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
	}
	return db, nil
}

// OpenSQL opens a gorm connection for driver, postgres or sqlite.
func OpenSQL(driver, postgresConnStr, sqlitePath string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		if postgresConnStr == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		dialector = postgres.Open(postgresConnStr)
	case "sqlite":
		dialector = sqlite.Open(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGorm(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	l := logger.L()
	l.Info().Str("driver", driver).Msg("connected to database")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	l := logger.L()
	l.Info().Msg("connected to MongoDB")
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	l := logger.L()
	if db.SQL != nil {
		if sqlDB, err := db.SQL.DB(); err != nil {
			l.Error().Err(err).Msg("error getting sql.DB from gorm")
		} else if err := sqlDB.Close(); err != nil {
			l.Error().Err(err).Msg("error closing database connection")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			l.Error().Err(err).Msg("error closing MongoDB connection")
		}
	}
}
