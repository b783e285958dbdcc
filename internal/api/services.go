package api

import (
	"github.com/onlibrary/onlibrary-server/internal/service"
	"github.com/onlibrary/onlibrary-server/internal/transfer"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Session  *service.SessionService
	Book     *service.BookService
	Library  *service.LibraryService
	Tag      *service.TagService
	List     *service.ListService
	Stats    *service.StatsService
	Profile  *service.ProfileService
	Social   *service.SocialService
	Explore  *service.ExploreService
	Metadata *service.MetadataService
	Transfer *transfer.Service
}
