package di

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	httpctrl "github.com/julienreichel/oc-provider-backend/internal/controller/http"
	mongodao "github.com/julienreichel/oc-provider-backend/internal/domain/dao/mongo"
	"github.com/julienreichel/oc-provider-backend/internal/domain/dao/mongo/document"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
)

// SQLDatabase wraps *gorm.DB for SQL databases (SQLite, MySQL, PostgreSQL).
// DB is nil when another driver is configured.
type SQLDatabase struct {
	DB *gorm.DB
}

// MongoDatabase wraps *mongo.Database for MongoDB.
// DB is nil when another driver is configured.
type MongoDatabase struct {
	DB     *mongo.Database
	Client *mongo.Client
}

// DatabaseModule provides database dependencies based on config
var DatabaseModule = fx.Module("database",
	fx.Provide(
		provideSQLDatabase,
		provideMongoDatabase,
		provideReadinessPinger,
	),
)

// provideSQLDatabase creates a GORM database connection for SQL databases.
func provideSQLDatabase(lc fx.Lifecycle, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLDatabase, error) {
	if !cfg.IsSQL() {
		return &SQLDatabase{DB: nil}, nil
	}

	var dialector gorm.Dialector
	switch config.DatabaseDriver(cfg.Driver) {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %s", cfg.Driver)
	}

	logger.Info("Connecting to SQL database", zap.String("driver", cfg.Driver))

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if config.DatabaseDriver(cfg.Driver) == config.DriverSQLite {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing SQL database connection")
			return sqlDB.Close()
		},
	})

	return &SQLDatabase{DB: db}, nil
}

// provideMongoDatabase creates a MongoDB database connection.
func provideMongoDatabase(lc fx.Lifecycle, dbCfg *config.DatabaseConfig, cfg *config.MongoDBConfig, logger *zap.Logger) (*MongoDatabase, error) {
	if !dbCfg.IsMongoDB() {
		return &MongoDatabase{DB: nil, Client: nil}, nil
	}

	logger.Info("Connecting to MongoDB", zap.String("database", cfg.Database))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing MongoDB connection")
			return client.Disconnect(ctx)
		},
	})

	return &MongoDatabase{DB: client.Database(cfg.Database), Client: client}, nil
}

type sqlPinger struct{ db *gorm.DB }

func (p sqlPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type mongoPinger struct{ client *mongo.Client }

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// provideReadinessPinger returns nil for the in-memory store, which the
// readiness probe reports as not configured.
func provideReadinessPinger(sqlDB *SQLDatabase, mongoDB *MongoDatabase) httpctrl.Pinger {
	switch {
	case sqlDB.DB != nil:
		return sqlPinger{db: sqlDB.DB}
	case mongoDB.Client != nil:
		return mongoPinger{client: mongoDB.Client}
	default:
		return nil
	}
}

// RunMigrations creates the documents table or collection indexes for the
// configured driver.
func RunMigrations(ctx context.Context, sqlDB *SQLDatabase, mongoDB *MongoDatabase, logger *zap.Logger) error {
	if sqlDB.DB != nil {
		logger.Info("Running SQL database migrations")
		return sqlDB.DB.WithContext(ctx).AutoMigrate(&entity.Document{})
	}

	if mongoDB.DB != nil {
		logger.Info("Creating MongoDB indexes")
		collection := mongoDB.DB.Collection(document.DocumentRecord{}.CollectionName())
		if _, err := collection.Indexes().CreateMany(ctx, mongodao.DocumentIndexes()); err != nil {
			logger.Error("Failed to create document indexes", zap.Error(err))
			return err
		}
		return nil
	}

	logger.Info("In-memory store configured, nothing to migrate")
	return nil
}

func autoMigrate(cfg *config.DatabaseConfig, sqlDB *SQLDatabase, mongoDB *MongoDatabase, logger *zap.Logger) error {
	if !cfg.AutoMigrate {
		return nil
	}
	return RunMigrations(context.Background(), sqlDB, mongoDB, logger)
}
