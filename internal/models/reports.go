package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinActionTakenLength minimum description length of an action report
	MinActionTakenLength = 10
	// MinReportTextLength minimum length of a community observation
	MinReportTextLength = 20
	// DefaultUserID used until operators are authenticated
	DefaultUserID = "system"
)

// ActionReport mitigation action taken by an operator in response to an alert (immutable)
type ActionReport struct {
	ID          string    `json:"id" db:"id"`
	AlertID     string    `json:"alertId" db:"alert_id"`
	ActionTaken string    `json:"actionTaken" db:"action_taken"`
	UserID      string    `json:"userId" db:"user_id"`
	Timestamp   time.Time `json:"timestamp" db:"created_at"`
}

// NewActionReport payload for POST /api/action-reports
type NewActionReport struct {
	AlertID     string `json:"alertId"`
	ActionTaken string `json:"actionTaken"`
	UserID      string `json:"userId,omitempty"`
}

// Validate checks the payload and applies the default user
func (r *NewActionReport) Validate() error {
	if strings.TrimSpace(r.AlertID) == "" {
		return fmt.Errorf("%w: alertId is required", ErrValidation)
	}
	if len([]rune(r.ActionTaken)) < MinActionTakenLength {
		return fmt.Errorf("%w: please describe the action taken in detail", ErrValidation)
	}
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
	return nil
}

// CommunityReport citizen-submitted environmental observation
type CommunityReport struct {
	ID         string    `json:"id" db:"id"`
	ZoneID     string    `json:"zoneId" db:"zone_id"`
	ZoneName   string    `json:"zoneName" db:"zone_name"`
	ReportText string    `json:"reportText" db:"report_text"`
	IsVerified bool      `json:"isVerified" db:"is_verified"`
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
}

// NewCommunityReport payload for POST /api/community-reports
type NewCommunityReport struct {
	ZoneID     string `json:"zoneId"`
	ZoneName   string `json:"zoneName"`
	ReportText string `json:"reportText"`
	IsVerified bool   `json:"isVerified,omitempty"`
}

// Validate checks the payload
func (r NewCommunityReport) Validate() error {
	if strings.TrimSpace(r.ZoneID) == "" {
		return fmt.Errorf("%w: zoneId is required", ErrValidation)
	}
	if strings.TrimSpace(r.ZoneName) == "" {
		return fmt.Errorf("%w: zoneName is required", ErrValidation)
	}
	if len([]rune(r.ReportText)) < MinReportTextLength {
		return fmt.Errorf("%w: please provide detailed observations", ErrValidation)
	}
	return nil
}
