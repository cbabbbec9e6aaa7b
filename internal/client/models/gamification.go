package models

import (
	"errors"
	"strings"
)

// Progress is the player's XP and streak state.
type Progress struct {
	XP            int `json:"xp"`
	Level         int `json:"level"`
	NextLevelXP   int `json:"next_level_xp,omitempty"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

func (p Progress) Validate() error {
	if p.XP < 0 || p.NextLevelXP < 0 {
		return errors.New("xp must not be negative")
	}
	if p.Level < 0 {
		return errors.New("level must not be negative")
	}
	if p.CurrentStreak < 0 || p.LongestStreak < 0 {
		return errors.New("streak must not be negative")
	}
	return nil
}

// AddXPRequest is the body of the XP award endpoint.
type AddXPRequest struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

func (r AddXPRequest) Validate() error {
	if strings.TrimSpace(r.Action) == "" {
		return errors.New("xp action is required")
	}
	if r.Amount <= 0 {
		return errors.New("xp amount must be positive")
	}
	return nil
}

type AddXPResponse struct {
	XP        int  `json:"xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up,omitempty"`
}

func (r AddXPResponse) Validate() error {
	if r.XP < 0 || r.Level < 0 {
		return errors.New("xp and level must not be negative")
	}
	return nil
}

// StreakResponse is returned after a streak increment.
type StreakResponse struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

func (r StreakResponse) Validate() error {
	if r.CurrentStreak < 0 || r.LongestStreak < 0 {
		return errors.New("streak must not be negative")
	}
	return nil
}
