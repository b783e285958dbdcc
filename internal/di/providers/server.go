package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/onlibrary/onlibrary-server/internal/api"
	"github.com/onlibrary/onlibrary-server/internal/config"
	"github.com/onlibrary/onlibrary-server/internal/logger"
	"github.com/onlibrary/onlibrary-server/internal/service"
	"github.com/onlibrary/onlibrary-server/internal/sse"
	"github.com/onlibrary/onlibrary-server/internal/transfer"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideSSEHandler provides the SSE stream endpoint handler.
// The auth service doubles as its token verifier.
func ProvideSSEHandler(i do.Injector) (*sse.Handler, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return sse.NewHandler(sseHandle.Manager, log.Logger, authService), nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandler := do.MustInvoke[*sse.Handler](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Session:  do.MustInvoke[*service.SessionService](i),
		Book:     do.MustInvoke[*service.BookService](i),
		Library:  do.MustInvoke[*service.LibraryService](i),
		Tag:      do.MustInvoke[*service.TagService](i),
		List:     do.MustInvoke[*service.ListService](i),
		Stats:    do.MustInvoke[*service.StatsService](i),
		Profile:  do.MustInvoke[*service.ProfileService](i),
		Social:   do.MustInvoke[*service.SocialService](i),
		Explore:  do.MustInvoke[*service.ExploreService](i),
		Metadata: do.MustInvoke[*service.MetadataService](i),
		Transfer: do.MustInvoke[*transfer.Service](i),
	}

	handler := api.NewServer(storeHandle.Store, services, sseHandler, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
