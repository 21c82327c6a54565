package impl

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/qiraa-project/qiraa/grpc"
	"github.com/qiraa-project/qiraa/grpc/impl/storage"
	"github.com/qiraa-project/qiraa/pkg/cards"
	"github.com/qiraa-project/qiraa/pkg/font"
	"github.com/qiraa-project/qiraa/pkg/raster"
	"github.com/qiraa-project/qiraa/pkg/recognition"
	"github.com/qiraa-project/qiraa/pkg/session"
)

type server struct {
	pb.UnimplementedReaderServer

	rasterizer *raster.Rasterizer

	// Turns composites into recognition results. Usually wrapped with recognition.WithRetry.
	gateway recognition.Gateway

	// Used for drawing box ordinals on frames.
	fontProvider font.FontProvider

	// Storage is a collection of Google Cloud Storage related configurations.
	storage Storage

	// Used until the UI reports its container width.
	defaultContainerWidth int

	// Overridden in tests.
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session  *session.Session
	lastUsed time.Time
}

type Storage struct {
	// A client for Google Cloud Storage. Nil disables both buckets.
	Client storage.Client

	// The bucket name for saved flashcards. Empty keeps cards in the response only.
	CardsBucket string

	// The bucket name for archiving every analyzed composite. Empty disables archiving.
	CompositeArchiveBucket string
}

func New(
	rasterizer *raster.Rasterizer,
	gateway recognition.Gateway,
	fontProvider font.FontProvider,
	storage Storage,
	defaultContainerWidth int,
) *server {
	return &server{
		rasterizer:            rasterizer,
		gateway:               gateway,
		fontProvider:          fontProvider,
		storage:               storage,
		defaultContainerWidth: defaultContainerWidth,
		now:                   time.Now,
		sessions:              map[string]*sessionEntry{},
	}
}

func (s *server) newSession(containerWidth int) (string, *session.Session) {
	if containerWidth <= 0 {
		containerWidth = s.defaultContainerWidth
	}
	return uuid.NewString(), session.New(s.rasterizer, s.gateway, s.fontProvider, containerWidth)
}

func (s *server) session(id string) (*session.Session, error) {
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %s not found", id)
	}
	entry.lastUsed = s.now()
	return entry.session, nil
}

func (s *server) addSession(id string, readerSession *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{session: readerSession, lastUsed: s.now()}
}

func (s *server) removeSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SweepIdleSessions closes sessions that have not been used for longer than ttl, e.g. when
// a browser tab was closed without calling CloseSession. It returns how many were closed.
func (s *server) SweepIdleSessions(ttl time.Duration) int {
	var idle []*session.Session
	s.mu.Lock()
	for id, entry := range s.sessions {
		if s.now().Sub(entry.lastUsed) > ttl {
			idle = append(idle, entry.session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	// Close waits for in-flight renders, so it runs outside the lock.
	for _, readerSession := range idle {
		if err := readerSession.Close(); err != nil {
			log.Printf("Failed to close idle session: %v", err)
		}
	}
	return len(idle)
}

// RunSessionSweeper calls SweepIdleSessions every interval until ctx is done.
func (s *server) RunSessionSweeper(ctx context.Context, ttl time.Duration, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if closed := s.SweepIdleSessions(ttl); closed > 0 {
				log.Printf("Closed %d idle sessions", closed)
			}
		}
	}
}

func (s *server) cardStore() *cards.Store {
	if s.storage.Client == nil || s.storage.CardsBucket == "" {
		return nil
	}
	return cards.NewStore(s.storage.Client, s.storage.CardsBucket)
}
