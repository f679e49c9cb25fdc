package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/shot-tracker/internal/adherence"
	"github.com/illegalcall/shot-tracker/internal/metrics"
	"github.com/illegalcall/shot-tracker/internal/models"
	"github.com/illegalcall/shot-tracker/internal/repository"
)

const (
	defaultStatsMonths = 3
	maxStatsMonths     = 24
)

func statsVersionKey(userID string) string {
	return "stats:version:" + userID
}

func statsKey(userID, medicationID string, months int, version int64) string {
	return fmt.Sprintf("stats:%s:%s:%d:v%d", userID, medicationID, months, version)
}

// invalidateStats bumps the user's cache version so every cached summary
// becomes unreachable. A failure only means stale stats until the TTL.
func (s *Server) invalidateStats(ctx context.Context, userID string) {
	if err := s.db.Redis.Incr(ctx, statsVersionKey(userID)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", "user_id", userID, "error", err)
	}
}

func (s *Server) statsVersion(ctx context.Context, userID string) (int64, error) {
	v, err := s.db.Redis.Get(ctx, statsVersionKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

type statsResponse struct {
	Medication *models.Medication `json:"medication"`
	Months     int                `json:"months"`
	Summary    adherence.Summary  `json:"summary"`
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	months := c.QueryInt("months", defaultStatsMonths)
	if months < 1 || months > maxStatsMonths {
		return badRequest(c, "months must be between 1 and 24")
	}

	med, _, err := s.selectMedication(c)
	if err != nil {
		return s.fail(c, err, "Failed to fetch medication")
	}
	resp := statsResponse{Medication: med, Months: months}
	if med == nil {
		resp.Summary = adherence.Summary{Monthly: []adherence.MonthBucket{}, Sites: []adherence.SiteShare{}}
		return c.JSON(resp)
	}

	ctx := c.UserContext()
	uid := userID(c)
	loc, err := s.location(ctx, uid)
	if err != nil {
		return s.fail(c, err, "Failed to fetch profile")
	}
	window := adherence.LastMonths(s.now(), months, loc)

	// Cache errors fall through to a direct computation. A hit keeps its
	// aggregates, which lag by at most the TTL, but reports the current window.
	key := ""
	if version, err := s.statsVersion(ctx, uid); err != nil {
		s.logger.Warn("Stats cache unavailable", "error", err)
	} else {
		key = statsKey(uid, med.ID, months, version)
		if cached, err := s.db.Redis.Get(ctx, key).Bytes(); err == nil {
			if err := json.Unmarshal(cached, &resp.Summary); err == nil {
				resp.Summary.Window = window
				metrics.StatsCache.WithLabelValues("hit").Inc()
				return c.JSON(resp)
			}
		} else if err != redis.Nil {
			s.logger.Warn("Stats cache read failed", "key", key, "error", err)
		}
	}
	metrics.StatsCache.WithLabelValues("miss").Inc()

	calc, err := adherence.New(med.FrequencyDays, loc)
	if err != nil {
		return s.fail(c, err, "Invalid medication schedule")
	}
	logs, err := s.repo.ListInjections(ctx, uid, repository.InjectionFilter{MedicationID: med.ID})
	if err != nil {
		return s.fail(c, err, "Failed to fetch injections")
	}
	resp.Summary = calc.Summarize(adherence.FromLogs(logs), window)

	if key != "" {
		if data, err := json.Marshal(resp.Summary); err == nil {
			if err := s.db.Redis.Set(ctx, key, data, s.cfg.Cache.StatsTTL).Err(); err != nil {
				s.logger.Warn("Stats cache write failed", "key", key, "error", err)
			}
		}
	}

	return c.JSON(resp)
}
