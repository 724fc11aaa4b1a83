// Package matching ranks eligible servicemen for a service request.
package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"servicehub/apperrors"
	"servicehub/models"
	"servicehub/services/availability"
	"servicehub/services/geo"
	"servicehub/services/workload"

	"go.uber.org/zap"
)

// CandidateSource lists servicemen holding a skill whose coarse status is available.
type CandidateSource interface {
	FindBySkill(ctx context.Context, serviceID string) ([]models.Serviceman, error)
}

// Candidate is a ranked serviceman with the scoring snapshot used to rank them.
type Candidate struct {
	Serviceman models.Serviceman         `json:"serviceman"`
	Criteria   models.AssignmentCriteria `json:"criteria"`
}

func (c Candidate) ID() string { return c.Serviceman.ID }

// Result holds candidates best first.
type Result struct {
	Ranked []Candidate
}

func (r Result) Best() (Candidate, bool) {
	if len(r.Ranked) == 0 {
		return Candidate{}, false
	}
	return r.Ranked[0], true
}

// Engine is the read-only matching pass. It never mutates workload.
type Engine struct {
	Servicemen   CandidateSource
	Availability *availability.Index
	Policy       ScoringPolicy
	Logger       *zap.Logger
}

func NewEngine(src CandidateSource, ix *availability.Index, policy ScoringPolicy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Servicemen: src, Availability: ix, Policy: policy, Logger: logger}
}

// FindBestMatch returns every eligible candidate ranked best first, or a NoMatch error
// when nobody survives filtering.
func (e *Engine) FindBestMatch(ctx context.Context, serviceID string, instant time.Time, location *models.GeoPoint) (Result, error) {
	if serviceID == "" {
		return Result{}, apperrors.Validation("service id is required for matching")
	}
	pool, err := e.Servicemen.FindBySkill(ctx, serviceID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load candidates for service %s: %w", serviceID, err)
	}
	ranked, err := e.Rank(pool, serviceID, instant, location)
	if err != nil {
		return Result{}, err
	}
	if len(ranked) == 0 {
		e.Logger.Info("no serviceman matched",
			zap.String("serviceID", serviceID),
			zap.Int("pool", len(pool)),
			zap.Time("instant", instant))
		return Result{}, apperrors.NoMatch("no eligible serviceman for service %s at %s", serviceID, instant.Format(time.RFC3339))
	}
	return Result{Ranked: ranked}, nil
}

// Rank filters pool and orders the survivors. Order is deterministic: score desc,
// workload asc, serviceman id asc.
func (e *Engine) Rank(pool []models.Serviceman, serviceID string, instant time.Time, location *models.GeoPoint) ([]Candidate, error) {
	if location != nil {
		if err := geo.Validate(*location); err != nil {
			return nil, err
		}
	}

	resultsCh := make(chan Candidate, len(pool))
	var wg sync.WaitGroup
	for _, s := range pool {
		wg.Add(1)
		go func(s models.Serviceman) {
			defer wg.Done()
			if c, ok := e.evaluate(s, serviceID, instant, location); ok {
				resultsCh <- c
			}
		}(s)
	}
	wg.Wait()
	close(resultsCh)

	ranked := make([]Candidate, 0, len(pool))
	for c := range resultsCh {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Criteria.Score != b.Criteria.Score {
			return a.Criteria.Score > b.Criteria.Score
		}
		if a.Criteria.WorkloadPercentage != b.Criteria.WorkloadPercentage {
			return a.Criteria.WorkloadPercentage < b.Criteria.WorkloadPercentage
		}
		return a.Serviceman.ID < b.Serviceman.ID
	})
	return ranked, nil
}

func (e *Engine) evaluate(s models.Serviceman, serviceID string, instant time.Time, location *models.GeoPoint) (Candidate, bool) {
	if !s.HasSkill(serviceID) || s.Status != models.ServicemanAvailable {
		return Candidate{}, false
	}
	if workload.Remaining(s) == 0 {
		return Candidate{}, false
	}
	if !e.Availability.IsAvailable(s, instant) {
		return Candidate{}, false
	}

	in := scoreInput{
		workloadPercentage: workload.Percentage(s),
		averageRating:      s.Performance.Rating.Average,
		maxTravelKm:        s.MaxTravelDistance(),
	}
	if location != nil {
		d, err := geo.Distance(*location, s.Location)
		if err != nil {
			e.Logger.Debug("candidate has no usable location",
				zap.String("servicemanID", s.ID), zap.Error(err))
			return Candidate{}, false
		}
		if d > in.maxTravelKm {
			return Candidate{}, false
		}
		in.distanceKm = &d
	}

	criteria := e.Policy.score(in)
	criteria.SkillsMatched = []string{serviceID}
	return Candidate{Serviceman: s, Criteria: criteria}, true
}
