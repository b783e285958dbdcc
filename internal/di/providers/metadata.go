package providers

import (
	"github.com/samber/do/v2"

	"github.com/onlibrary/onlibrary-server/internal/config"
	"github.com/onlibrary/onlibrary-server/internal/logger"
	"github.com/onlibrary/onlibrary-server/internal/metadata/googlebooks"
	"github.com/onlibrary/onlibrary-server/internal/metadata/openlibrary"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

// GoogleBooksClientHandle wraps the Google Books client with shutdown capability.
type GoogleBooksClientHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *GoogleBooksClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideGoogleBooksClient provides the Google Books API client.
func ProvideGoogleBooksClient(i do.Injector) (*GoogleBooksClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := googlebooks.New(cfg.Metadata.GoogleBooksAPIKey, log.Logger,
		googlebooks.WithTimeout(cfg.Metadata.LookupTimeout),
		googlebooks.WithRPS(cfg.Metadata.ProviderRPS),
	)

	log.Info("Google Books client initialized",
		"authenticated", cfg.Metadata.GoogleBooksAPIKey != "",
	)

	return &GoogleBooksClientHandle{Client: client}, nil
}

// OpenLibraryClientHandle wraps the Open Library client with shutdown capability.
type OpenLibraryClientHandle struct {
	*openlibrary.Client
}

// Shutdown implements do.Shutdownable.
func (h *OpenLibraryClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideOpenLibraryClient provides the Open Library API client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := openlibrary.New(log.Logger,
		openlibrary.WithTimeout(cfg.Metadata.LookupTimeout),
	)

	log.Info("Open Library client initialized")

	return &OpenLibraryClientHandle{Client: client}, nil
}

// ProvideMetadataService provides the provider-merging metadata service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	google := do.MustInvoke[*GoogleBooksClientHandle](i)
	openLib := do.MustInvoke[*OpenLibraryClientHandle](i)

	return service.NewMetadataService(google.Client, openLib.Client, log.Logger), nil
}
