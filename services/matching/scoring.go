package matching

import "servicehub/models"

// ScoringPolicy weights the three score components. The totals are not normalized.
type ScoringPolicy struct {
	DistanceWeight float64 // points at zero distance
	WorkloadWeight float64 // points per free workload percent
	RatingWeight   float64 // points per rating star
}

func DefaultPolicy() ScoringPolicy {
	return ScoringPolicy{DistanceWeight: 40, WorkloadWeight: 0.3, RatingWeight: 10}
}

type scoreInput struct {
	distanceKm         *float64
	maxTravelKm        float64
	workloadPercentage float64
	averageRating      float64
}

func (p ScoringPolicy) score(in scoreInput) models.AssignmentCriteria {
	c := models.AssignmentCriteria{WorkloadPercentage: in.workloadPercentage}

	if in.distanceKm != nil {
		d := *in.distanceKm
		c.DistanceKm = &d
		if in.maxTravelKm > 0 {
			c.DistanceScore = (1 - d/in.maxTravelKm) * p.DistanceWeight
		}
	}

	pct := in.workloadPercentage
	if pct > 100 {
		pct = 100
	}
	c.WorkloadScore = (100 - pct) * p.WorkloadWeight

	rating := in.averageRating
	if rating > 5 {
		rating = 5
	} else if rating < 0 {
		rating = 0
	}
	c.RatingScore = rating * p.RatingWeight

	c.Score = c.DistanceScore + c.WorkloadScore + c.RatingScore
	return c
}
