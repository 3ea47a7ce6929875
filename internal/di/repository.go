package di

import (
	"go.uber.org/fx"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/repository"
	"github.com/julienreichel/oc-provider-backend/internal/domain/repository/impl"
)

// RepositoryModule provides repository dependencies.
// Repositories delegate to the DAO layer for database operations.
var RepositoryModule = fx.Module("repository",
	fx.Provide(provideDocumentRepository),
)

// provideDocumentRepository creates a DocumentRepository that delegates to DocumentDAO.
func provideDocumentRepository(documentDAO dao.DocumentDAO) repository.DocumentRepository {
	return impl.NewDocumentRepository(documentDAO)
}
