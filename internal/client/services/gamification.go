package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/cache"
	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/cooldown"
	"github.com/dmitrijs2005/cookquest/internal/client/gamification"
	"github.com/dmitrijs2005/cookquest/internal/client/metrics"
	"github.com/dmitrijs2005/cookquest/internal/client/models"
	"github.com/dmitrijs2005/cookquest/internal/logging"
)

const milestoneXPAction = "streak_milestone"

// StreakResult is the outcome of a streak increment.
type StreakResult struct {
	Days    int
	Longest int
	// Milestones reached by this increment, usually none.
	Milestones []gamification.Milestone
	// AwardedXP is the milestone XP the server accepted.
	AwardedXP int
}

type GamificationService interface {
	Progress(ctx context.Context) (models.Progress, error)
	// AddXP awards XP unless the same (action, amount) was awarded within
	// the cooldown window, in which case it returns cooldown.ErrOnCooldown.
	AddXP(ctx context.Context, action string, amount int) (models.AddXPResponse, error)
	IncrementStreak(ctx context.Context) (StreakResult, error)
}

type gamificationService struct {
	client  client.Client
	cache   *cache.Cache
	ttl     time.Duration
	gate    *cooldown.Gate
	window  time.Duration
	logger  logging.Logger
	metrics metrics.Recorder
}

func NewGamificationService(d Deps) GamificationService {
	return newGamificationService(d.withDefaults())
}

func newGamificationService(d Deps) *gamificationService {
	return &gamificationService{
		client:  d.Client,
		cache:   d.Cache,
		ttl:     d.CacheTTL,
		gate:    d.Gate,
		window:  d.XPCooldown,
		logger:  d.Logger,
		metrics: d.Metrics,
	}
}

func (s *gamificationService) Progress(ctx context.Context) (models.Progress, error) {
	return cache.GetOrFetch(ctx, s.cache, progressKey, s.ttl, func(ctx context.Context) (models.Progress, error) {
		return call[models.Progress](ctx, s.client, client.Request{Method: client.MethodGet, Path: progressPath})
	})
}

func (s *gamificationService) AddXP(ctx context.Context, action string, amount int) (models.AddXPResponse, error) {
	req := models.AddXPRequest{Action: action, Amount: amount}
	if err := validate(req); err != nil {
		return models.AddXPResponse{}, err
	}

	key := cooldown.Key("add_xp", action, amount)
	if !s.gate.TryAcquire(key, s.window) {
		s.metrics.CooldownRejected(action)
		left := s.gate.Remaining(key, s.window)
		s.logger.Info(ctx, "xp award on cooldown", "action", action, "amount", amount, "retry_in", left.String())
		return models.AddXPResponse{}, fmt.Errorf("%w: try again in %s", cooldown.ErrOnCooldown, left.Round(100*time.Millisecond))
	}

	return s.award(ctx, req)
}

// award posts an XP award without consulting the gate.
func (s *gamificationService) award(ctx context.Context, req models.AddXPRequest) (models.AddXPResponse, error) {
	resp, err := call[models.AddXPResponse](ctx, s.client, client.Request{Method: client.MethodPost, Path: addXPPath, Body: req})
	if err != nil {
		return models.AddXPResponse{}, fmt.Errorf("add xp: %w", err)
	}
	s.invalidateProgress(ctx)
	return resp, nil
}

// IncrementStreak bumps the daily streak and awards the XP of every milestone
// the new streak reaches. A failed award is logged and does not fail the
// increment.
func (s *gamificationService) IncrementStreak(ctx context.Context) (StreakResult, error) {
	resp, err := call[models.StreakResponse](ctx, s.client, client.Request{Method: client.MethodPost, Path: streakPath})
	if err != nil {
		return StreakResult{}, fmt.Errorf("increment streak: %w", err)
	}
	s.invalidateProgress(ctx)

	res := StreakResult{
		Days:       resp.CurrentStreak,
		Longest:    resp.LongestStreak,
		Milestones: gamification.Evaluate(resp.CurrentStreak),
	}

	for _, m := range res.Milestones {
		if m.XP <= 0 {
			continue
		}
		_, err := s.award(ctx, models.AddXPRequest{Action: milestoneXPAction, Amount: m.XP, Reason: m.Name})
		if err != nil {
			s.logger.Warn(ctx, "milestone xp award failed", "milestone", m.Name, "error", err)
			continue
		}
		res.AwardedXP += m.XP
		s.logger.Info(ctx, "milestone reached", "milestone", m.Name, "days", m.Days)
	}
	return res, nil
}

func (s *gamificationService) invalidateProgress(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, progressKey); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "key", progressKey, "error", err)
	}
}
