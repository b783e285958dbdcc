package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/onlibrary/onlibrary-server/internal/auth"
	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/id"
	"github.com/onlibrary/onlibrary-server/internal/sse"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// DemoEmail is the well-known login for the shared demo account.
const DemoEmail = "demo@onlibrary.example"

// DemoPassword is the published demo credential. The account's data is
// disposable, so a fixed password is fine.
const DemoPassword = "demodemo"

// DemoService maintains the shared demo account: seeds it on startup
// and restores the seed state on an interval so visitors always find a
// tidy library no matter what the previous visitor did to it.
type DemoService struct {
	store         *store.Store
	emitter       store.EventEmitter
	resetInterval time.Duration
	logger        *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// NewDemoService creates a new demo mode service.
func NewDemoService(st *store.Store, emitter store.EventEmitter, resetInterval time.Duration, logger *slog.Logger) *DemoService {
	return &DemoService{
		store:         st,
		emitter:       emitter,
		resetInterval: resetInterval,
		logger:        logger,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start seeds the demo account if needed and launches the reset loop.
func (s *DemoService) Start(ctx context.Context) error {
	user, err := s.ensureDemoUser(ctx)
	if err != nil {
		return fmt.Errorf("ensure demo user: %w", err)
	}
	if _, err := s.Reset(ctx, user.ID); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	go s.resetLoop(user.ID)
	return nil
}

// Stop terminates the reset loop.
func (s *DemoService) Stop() {
	close(s.stop)
	<-s.done
}

// Reset wipes the demo account's books and lists and reseeds them.
// Broadcasts demo.reset so connected clients reload.
func (s *DemoService) Reset(ctx context.Context, demoUserID string) (int, error) {
	if _, err := s.store.DeleteBooksForOwner(ctx, demoUserID); err != nil {
		return 0, fmt.Errorf("clear demo books: %w", err)
	}
	if _, err := s.store.DeleteListsForOwner(ctx, demoUserID); err != nil {
		return 0, fmt.Errorf("clear demo lists: %w", err)
	}

	seeded, err := SeedLibrary(ctx, s.store, demoUserID)
	if err != nil {
		return 0, err
	}

	s.emitter.Emit(sse.NewDemoResetEvent(time.Now()))
	if s.logger != nil {
		s.logger.Info("demo data reset", "books", seeded)
	}
	return seeded, nil
}

func (s *DemoService) resetLoop(demoUserID string) {
	defer close(s.done)

	ticker := time.NewTicker(s.resetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := s.Reset(ctx, demoUserID); err != nil && s.logger != nil {
				s.logger.Error("demo reset failed", "error", err)
			}
			cancel()
		case <-s.stop:
			return
		}
	}
}

// ensureDemoUser finds or creates the demo account.
func (s *DemoService) ensureDemoUser(ctx context.Context) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, DemoEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user = &domain.User{
		ID:           userID,
		Email:        DemoEmail,
		PasswordHash: passwordHash,
		Role:         domain.RoleMember,
		DisplayName:  "Demo Reader",
		IsDemo:       true,
	}
	user.InitTimestamps()
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	profile := domain.NewUserProfile(userID, "demo"+uuid.NewString()[:8])
	profile.DisplayName = "Demo Reader"
	profile.Tagline = "A shared sandbox account"
	if err := s.store.SaveUserProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save demo profile: %w", err)
	}

	return user, nil
}

// SeedLibrary loads the fixed sample dataset into an owner's library.
// Shared by demo mode and cmd/seed.
func SeedLibrary(ctx context.Context, st *store.Store, ownerID string) (int, error) {
	baseID := domain.NewBookID(time.Now())
	for i, seed := range seedBooks {
		now := time.Now()
		book := seed
		book.ID = baseID + int64(i)
		book.OwnerID = ownerID
		book.CreatedAt = now
		book.UpdatedAt = now
		if err := st.CreateBook(ctx, &book); err != nil {
			return 0, fmt.Errorf("seed book %q: %w", book.Title, err)
		}
	}

	list := &domain.BookList{
		ID:        baseID + int64(len(seedBooks)),
		OwnerID:   ownerID,
		Name:      "To Re-read",
		BookIDs:   []int64{baseID, baseID + 2, baseID + 4},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := st.CreateList(ctx, list); err != nil {
		return 0, fmt.Errorf("seed list: %w", err)
	}

	return len(seedBooks), nil
}

// seedBooks is the fixed demo dataset. IDs and owner are assigned at
// seed time.
var seedBooks = []domain.Book{
	{
		Title:           "The Left Hand of Darkness",
		Authors:         []string{"Ursula K. Le Guin"},
		Publisher:       "Ace Books",
		PublicationYear: 1969,
		Tags:            []string{"sci-fi", "classic"},
		FinishedMonth:   "2025-01",
	},
	{
		Title:           "Piranesi",
		Authors:         []string{"Susanna Clarke"},
		Publisher:       "Bloomsbury",
		PublicationYear: 2020,
		Tags:            []string{"fantasy", "favorite"},
		FinishedMonth:   "2025-02",
	},
	{
		Title:           "The Name of the Rose",
		Authors:         []string{"Umberto Eco"},
		Publisher:       "Harcourt",
		PublicationYear: 1980,
		Tags:            []string{"mystery", "historical"},
		FinishedMonth:   "2025-02",
	},
	{
		Title:           "A Memory Called Empire",
		Authors:         []string{"Arkady Martine"},
		Publisher:       "Tor Books",
		PublicationYear: 2019,
		Tags:            []string{"sci-fi", "space-opera"},
		FinishedMonth:   "2025-04",
	},
	{
		Title:           "The Remains of the Day",
		Authors:         []string{"Kazuo Ishiguro"},
		Publisher:       "Faber and Faber",
		PublicationYear: 1989,
		Tags:            []string{"literary", "classic"},
	},
	{
		Title:           "Gideon the Ninth",
		Authors:         []string{"Tamsyn Muir"},
		Publisher:       "Tor Books",
		PublicationYear: 2019,
		Tags:            []string{"sci-fi", "fantasy"},
	},
}
