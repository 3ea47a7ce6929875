package di

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	cachedao "github.com/julienreichel/oc-provider-backend/internal/domain/dao/cache"
	gormdao "github.com/julienreichel/oc-provider-backend/internal/domain/dao/gorm"
	memorydao "github.com/julienreichel/oc-provider-backend/internal/domain/dao/memory"
	mongodao "github.com/julienreichel/oc-provider-backend/internal/domain/dao/mongo"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
)

// DAOModule provides the DocumentDAO for the configured database driver,
// wrapped by the Redis read-through cache when enabled.
var DAOModule = fx.Module("dao",
	fx.Provide(provideDocumentDAO),
)

func provideDocumentDAO(
	cfg *config.DatabaseConfig,
	redisCfg *config.RedisConfig,
	sqlDB *SQLDatabase,
	mongoDB *MongoDatabase,
	redisClient redis.UniversalClient,
	metrics *observability.MetricsProvider,
	logger *zap.Logger,
) dao.DocumentDAO {
	var documentDAO dao.DocumentDAO
	switch {
	case cfg.IsMongoDB():
		documentDAO = mongodao.NewDocumentDAO(mongoDB.DB)
	case cfg.IsSQL():
		documentDAO = gormdao.NewDocumentDAO(sqlDB.DB)
	default:
		documentDAO = memorydao.NewDocumentDAO()
	}

	if redisClient == nil {
		return documentDAO
	}
	return cachedao.NewDocumentDAO(documentDAO, redisClient, redisCfg.TTL, logger, cachedao.WithRecorder(metrics))
}
