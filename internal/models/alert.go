package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity ordinal alert priority: critical > high > medium
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium:
		return true
	}
	return false
}

// Alert threshold alert raised for a zone
// Timestamp is the creation time and is never updated; IsActive only ever flips true -> false.
type Alert struct {
	ID        string    `json:"id" db:"id"`
	ZoneID    string    `json:"zoneId" db:"zone_id"`
	ZoneName  string    `json:"zoneName" db:"zone_name"`
	ResScore  float64   `json:"resScore" db:"res_score"` // snapshot at creation
	PM25      float64   `json:"pm25" db:"pm25"`          // snapshot at creation
	Severity  Severity  `json:"severity" db:"severity"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
	IsActive  bool      `json:"isActive" db:"is_active"`
}

// AlertPatch partial alert update; nil fields are left untouched
type AlertPatch struct {
	IsActive *bool `json:"isActive,omitempty"`
}

// NewAlert payload for POST /api/alerts
type NewAlert struct {
	ZoneID    string    `json:"zoneId"`
	ZoneName  string    `json:"zoneName"`
	ResScore  *float64  `json:"resScore"`
	PM25      *float64  `json:"pm25"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsActive  *bool     `json:"isActive,omitempty"`
}

// Validate checks the alert payload
func (a NewAlert) Validate() error {
	if strings.TrimSpace(a.ZoneID) == "" {
		return fmt.Errorf("%w: zoneId is required", ErrValidation)
	}
	if strings.TrimSpace(a.ZoneName) == "" {
		return fmt.Errorf("%w: zoneName is required", ErrValidation)
	}
	if a.ResScore == nil || *a.ResScore < 0 || *a.ResScore > 100 {
		return fmt.Errorf("%w: resScore must be within [0,100]", ErrValidation)
	}
	if a.PM25 == nil || *a.PM25 < 0 {
		return fmt.Errorf("%w: pm25 must be >= 0", ErrValidation)
	}
	if !a.Severity.Valid() {
		return fmt.Errorf("%w: severity must be one of critical, high, medium", ErrValidation)
	}
	if a.Message == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrValidation)
	}
	return nil
}

// ToAlert builds the alert record; isActive defaults to true
func (a NewAlert) ToAlert() Alert {
	active := true
	if a.IsActive != nil {
		active = *a.IsActive
	}
	alert := Alert{
		ZoneID:    a.ZoneID,
		ZoneName:  a.ZoneName,
		Severity:  a.Severity,
		Message:   a.Message,
		Timestamp: a.Timestamp,
		IsActive:  active,
	}
	if a.ResScore != nil {
		alert.ResScore = *a.ResScore
	}
	if a.PM25 != nil {
		alert.PM25 = *a.PM25
	}
	return alert
}
