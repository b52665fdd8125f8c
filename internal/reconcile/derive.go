// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package reconcile

import (
	"fmt"
	"math"

	"github.com/tomtom215/respawn/internal/models"
)

// Derived participant columns.
const (
	colAgeGroup         = "age_group"
	colAnxietyLevel     = "anxiety_level"
	colBehaviorCategory = "behavior_category"
	colWellnessScore    = "wellness_score"
)

// AgeGroup buckets an age: Teen <18, Young Adult <25, Adult <35, else Older Adult.
func AgeGroup(age int) (string, error) {
	switch {
	case age < 0:
		return "", fmt.Errorf("negative age %d", age)
	case age < 18:
		return "Teen", nil
	case age < 25:
		return "Young Adult", nil
	case age < 35:
		return "Adult", nil
	default:
		return "Older Adult", nil
	}
}

// BehaviorCategory buckets weekly gaming hours.
func BehaviorCategory(weeklyHours float64) (string, error) {
	switch {
	case math.IsNaN(weeklyHours) || weeklyHours < 0:
		return "", fmt.Errorf("invalid weekly hours %v", weeklyHours)
	case weeklyHours < 7:
		return "Casual", nil
	case weeklyHours < 21:
		return "Regular", nil
	case weeklyHours < 42:
		return "Heavy", nil
	default:
		return "Problematic", nil
	}
}

// AnxietyLevel buckets a GAD total using the standard GAD-7 cut points.
func AnxietyLevel(gad float64) (string, error) {
	switch {
	case !models.AnxietyRange.Contains(gad):
		return "", fmt.Errorf("gad total %v outside %v-%v", gad, models.AnxietyRange.Min, models.AnxietyRange.Max)
	case gad <= 4:
		return "Minimal", nil
	case gad <= 9:
		return "Mild", nil
	case gad <= 14:
		return "Moderate", nil
	default:
		return "Severe", nil
	}
}

// WellnessScore is a 0-100 heuristic combining daily hours, anxiety and age.
// gad is nil for participants without an anxiety score.
func WellnessScore(dailyHours float64, age int, gad *float64) (float64, error) {
	if math.IsNaN(dailyHours) || dailyHours < 0 {
		return 0, fmt.Errorf("invalid daily hours %v", dailyHours)
	}
	score := 50.0

	switch {
	case dailyHours <= 2:
		score += 20
	case dailyHours <= 4:
		score += 10
	case dailyHours <= 6:
		score -= 5
	default:
		score -= 20
	}

	if gad != nil {
		if !models.AnxietyRange.Contains(*gad) {
			return 0, fmt.Errorf("gad total %v out of range", *gad)
		}
		// GAD is rescaled onto a 0-9 band before weighting.
		score -= (*gad / models.AnxietyRange.Max * 9) * 3
	}

	if age < 18 && dailyHours > 4 {
		score -= 10
	}
	if age > 50 && dailyHours <= 4 {
		score += 5
	}

	return round1(models.WellnessRange.Clamp(score)), nil
}
