// Package di provides dependency injection configuration for the OnLibrary server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/onlibrary/onlibrary-server/internal/auth"
	"github.com/onlibrary/onlibrary-server/internal/config"
	"github.com/onlibrary/onlibrary-server/internal/di/providers"
	"github.com/onlibrary/onlibrary-server/internal/logger"
	"github.com/onlibrary/onlibrary-server/internal/service"
	"github.com/onlibrary/onlibrary-server/internal/sse"
	"github.com/onlibrary/onlibrary-server/internal/transfer"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Metadata providers
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideOpenLibraryClient)
	do.Provide(injector, providers.ProvideMetadataService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideExploreService)
	do.Provide(injector, providers.ProvideTransferService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideDemoService)

	// Server
	do.Provide(injector, providers.ProvideSSEHandler)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.GoogleBooksClientHandle](injector)
	_ = do.MustInvoke[*providers.OpenLibraryClientHandle](injector)
	_ = do.MustInvoke[*service.MetadataService](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.ListService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.SocialService](injector)
	_ = do.MustInvoke[*service.ExploreService](injector)
	_ = do.MustInvoke[*transfer.Service](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.DemoServiceHandle](injector)

	// Server
	_ = do.MustInvoke[*sse.Handler](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
