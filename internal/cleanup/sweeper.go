package cleanup

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fluentvoice/fluentvoice-backend/internal/config"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
	"github.com/fluentvoice/fluentvoice-backend/internal/rooms"
	"github.com/fluentvoice/fluentvoice-backend/internal/session"
)

// agentIdentityPrefix marks the AI teacher's participant identity. Agent
// participants do not count as humans when deciding whether a room is
// abandoned.
const agentIdentityPrefix = "agent-"

// managedRoomPrefix limits the sweep to rooms this backend created.
const managedRoomPrefix = "practice-"

// perRoomTimeout bounds the provider calls for a single room so one slow
// room cannot stall the whole sweep.
const perRoomTimeout = 15 * time.Second

// Sweeper reclaims abandoned media rooms on a timer, independent of the
// request path. It is best-effort housekeeping: per-room failures are
// logged and do not abort the rest of the sweep.
type Sweeper struct {
	provider    rooms.Provider
	store       session.Store
	sessionRepo repository.SessionRepository
	cfg         config.CleanupConfig
	logger      *logrus.Logger
	now         func() time.Time
}

// NewSweeper creates a cleanup sweeper.
func NewSweeper(provider rooms.Provider, store session.Store, sessionRepo repository.SessionRepository, cfg config.CleanupConfig, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = logrus.New()
	}
	return &Sweeper{
		provider:    provider,
		store:       store,
		sessionRepo: sessionRepo,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.cfg.Interval).Info("cleanup sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep examines every managed room once and tears down the abandoned
// ones. Safe to run concurrently with normal start/end traffic: room
// deletion is idempotent and ending a session twice is a no-op.
func (s *Sweeper) Sweep(ctx context.Context) {
	roomList, err := s.provider.ListRooms(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("cleanup sweep could not list rooms")
		return
	}

	for _, room := range roomList {
		if !strings.HasPrefix(room.Name, managedRoomPrefix) {
			continue
		}
		if err := s.sweepRoom(ctx, room); err != nil {
			s.logger.WithError(err).WithField("room", room.Name).Warn("failed to sweep room")
		}
	}
}

func (s *Sweeper) sweepRoom(ctx context.Context, room rooms.Room) error {
	ctx, cancel := context.WithTimeout(ctx, perRoomTimeout)
	defer cancel()

	participants, err := s.provider.ListParticipants(ctx, room.Name)
	if err != nil {
		return err
	}

	humans := 0
	for _, p := range participants {
		if !strings.HasPrefix(p.Identity, agentIdentityPrefix) {
			humans++
		}
	}

	// A room with a human in it is never torn down, no matter its age.
	if humans > 0 {
		return nil
	}

	age := s.now().Sub(room.CreationTime)
	sess, known := s.store.GetByRoomName(room.Name)

	idle := age >= s.cfg.IdleThreshold
	overMaxAge := age >= s.cfg.MaxRoomAge
	endedLocally := known && sess.Ended()

	if !idle && !overMaxAge && !endedLocally {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"room":          room.Name,
		"age":           age.Round(time.Second),
		"idle":          idle,
		"over_max_age":  overMaxAge,
		"ended_locally": endedLocally,
	}).Info("tearing down abandoned room")

	if err := s.provider.DeleteRoom(ctx, room.Name); err != nil {
		return err
	}

	if known && !sess.Ended() {
		s.store.End(sess.ID)
		if s.sessionRepo != nil {
			if err := s.sessionRepo.End(ctx, sess.ID, s.now().UTC()); err != nil {
				s.logger.WithError(err).WithField("session_id", sess.ID).Warn("failed to mirror session end")
			}
		}
	}

	return nil
}
