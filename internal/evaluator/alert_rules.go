// Package evaluator turns RES scores into alerts and reconciles existing alerts.
//
// Each (zoneId, severity) pair moves through no-alert -> active -> inactive. An inactive
// record is terminal: a condition that qualifies again produces a new alert record.
package evaluator

import (
	"fmt"
	"math"
	"strconv"

	"climate-sentinel/internal/models"
)

// Decision outcome of the ordered threshold rules for one score
type Decision struct {
	ShouldAlert bool
	Severity    models.Severity
	Message     string
}

// ShouldGenerateAlert evaluates the rules in order; the first match wins.
//  1. score < resCritical  -> critical (RES)
//  2. pm25 > pm25Critical  -> critical (PM2.5)
//  3. score < resHigh      -> high (RES)
//  4. pm25 > pm25High      -> high (PM2.5)
//  5. pm25 > pm25Medium    -> medium
func ShouldGenerateAlert(score models.ResScore, thresholds *Thresholds) Decision {
	t := orDefault(thresholds)

	if score.Score < t.ResCritical {
		return Decision{
			ShouldAlert: true,
			Severity:    models.SeverityCritical,
			Message:     fmt.Sprintf("Critical resilience failure detected. RES score at %d/100.", roundScore(score.Score)),
		}
	}
	if score.PM25 > t.PM25Critical {
		return Decision{
			ShouldAlert: true,
			Severity:    models.SeverityCritical,
			Message:     fmt.Sprintf("Hazardous air quality detected. PM2.5 at %s μg/m³ (>%g).", formatPM25(score.PM25), t.PM25Critical),
		}
	}
	if score.Score < t.ResHigh {
		return Decision{
			ShouldAlert: true,
			Severity:    models.SeverityHigh,
			Message:     fmt.Sprintf("Low resilience warning. RES score at %d/100.", roundScore(score.Score)),
		}
	}
	if score.PM25 > t.PM25High {
		return Decision{
			ShouldAlert: true,
			Severity:    models.SeverityHigh,
			Message:     fmt.Sprintf("Unhealthy air quality detected. PM2.5 at %s μg/m³ (>%g).", formatPM25(score.PM25), t.PM25High),
		}
	}
	if score.PM25 > t.PM25Medium {
		return Decision{
			ShouldAlert: true,
			Severity:    models.SeverityMedium,
			Message:     fmt.Sprintf("Moderate air quality detected. PM2.5 at %s μg/m³.", formatPM25(score.PM25)),
		}
	}
	return Decision{}
}

// GenerateAlerts builds one fresh active alert per signalling zone.
// Candidates are not de-duplicated here; see MergeAlerts.
func GenerateAlerts(scores []models.ResScore, thresholds *Thresholds) []models.Alert {
	alerts := make([]models.Alert, 0)
	for _, score := range scores {
		d := ShouldGenerateAlert(score, thresholds)
		if !d.ShouldAlert {
			continue
		}
		alerts = append(alerts, BuildAlert(score, d))
	}
	return alerts
}

// UpdateAlertStatus re-evaluates every existing alert against the current scores and returns
// the full list with deactivations applied. An alert whose zone is no longer scored is
// deactivated unconditionally.
func UpdateAlertStatus(existing []models.Alert, current []models.ResScore, thresholds *Thresholds) []models.Alert {
	byZone := make(map[string]models.ResScore, len(current))
	for _, s := range current {
		if _, seen := byZone[s.ZoneID]; !seen {
			byZone[s.ZoneID] = s
		}
	}

	updated := make([]models.Alert, 0, len(existing))
	for _, alert := range existing {
		score, ok := byZone[alert.ZoneID]
		if !ok {
			alert.IsActive = false
			updated = append(updated, alert)
			continue
		}
		if alert.IsActive && !ShouldGenerateAlert(score, thresholds).ShouldAlert {
			alert.IsActive = false
		}
		updated = append(updated, alert)
	}
	return updated
}

// MergeAlerts appends each candidate unless an active alert with the same (zoneId, severity)
// is already present in the merged list.
func MergeAlerts(existing, candidates []models.Alert) []models.Alert {
	merged := make([]models.Alert, len(existing), len(existing)+len(candidates))
	copy(merged, existing)

	active := make(map[alertKey]struct{}, len(existing))
	for _, a := range existing {
		if a.IsActive {
			active[keyOf(a)] = struct{}{}
		}
	}

	for _, c := range candidates {
		k := keyOf(c)
		if _, dup := active[k]; dup {
			continue
		}
		merged = append(merged, c)
		if c.IsActive {
			active[k] = struct{}{}
		}
	}
	return merged
}

// ChangedAlerts returns the records of after whose IsActive flag differs from before.
// Both slices are matched by alert ID.
func ChangedAlerts(before, after []models.Alert) []models.Alert {
	prev := make(map[string]bool, len(before))
	for _, a := range before {
		prev[a.ID] = a.IsActive
	}
	changed := make([]models.Alert, 0)
	for _, a := range after {
		if was, ok := prev[a.ID]; ok && was != a.IsActive {
			changed = append(changed, a)
		}
	}
	return changed
}

type alertKey struct {
	zoneID   string
	severity models.Severity
}

func keyOf(a models.Alert) alertKey {
	return alertKey{zoneID: a.ZoneID, severity: a.Severity}
}

// formatPM25 one decimal, exact ties (x.25, x.75) rounded up rather than to even
func formatPM25(v float64) string {
	if q := v * 4; q == math.Trunc(q) && v*2 != math.Trunc(v*2) {
		v = math.Floor(v*10+0.5) / 10
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// scores are never negative, so half-away-from-zero matches half-up rounding
func roundScore(v float64) int {
	return int(math.Round(v))
}
