package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/onlibrary/onlibrary-server/internal/config"
	"github.com/onlibrary/onlibrary-server/internal/logger"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// DemoServiceHandle wraps the demo reset service with shutdown capability.
// The service is nil when demo mode is disabled.
type DemoServiceHandle struct {
	*service.DemoService
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *DemoServiceHandle) Shutdown() error {
	if h.started {
		h.Stop()
	}
	return nil
}

// ProvideDemoService provides the demo mode seeder and reset loop.
func ProvideDemoService(i do.Injector) (*DemoServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Demo.Enabled {
		return &DemoServiceHandle{DemoService: nil, started: false}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	svc := service.NewDemoService(storeHandle.Store, sseHandle.Manager, cfg.Demo.ResetInterval, log.Logger)
	if err := svc.Start(context.Background()); err != nil {
		return nil, err
	}

	log.Info("Demo mode active", "reset_interval", cfg.Demo.ResetInterval)

	return &DemoServiceHandle{DemoService: svc, started: true}, nil
}
