// Package gamification holds the client-side streak milestone table.
package gamification

import (
	"fmt"
	"slices"
)

// Milestone is a streak length that earns a reward. XP is awarded by the
// caller when the milestone is reached.
type Milestone struct {
	Days        int    `json:"days"`
	Name        string `json:"name"`
	Reward      string `json:"reward"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
}

// milestones is ordered by strictly increasing Days.
var milestones = []Milestone{
	{Days: 3, Name: "Kitchen Starter", Reward: "50 XP", XP: 50, Description: "Cooked three days in a row."},
	{Days: 7, Name: "Week Warrior", Reward: "100 XP", XP: 100, Description: "A full week of daily cooking."},
	{Days: 14, Name: "Fortnight Foodie", Reward: "200 XP", XP: 200, Description: "Two weeks without missing a day."},
	{Days: 30, Name: "Monthly Master", Reward: "500 XP", XP: 500, Description: "A month-long cooking streak."},
	{Days: 60, Name: "Culinary Devotee", Reward: "750 XP", XP: 750, Description: "Sixty days of dedication."},
	{Days: 100, Name: "Century Cook", Reward: "1000 XP", XP: 1000, Description: "One hundred days at the stove."},
	{Days: 180, Name: "Half-Year Hero", Reward: "1500 XP", XP: 1500, Description: "Half a year of daily cooking."},
	{Days: 365, Name: "Legendary Chef", Reward: "5000 XP", XP: 5000, Description: "A whole year, every single day."},
}

// Evaluate returns every milestone whose Days equals days. It does not assume
// day values are unique and returns an empty slice when nothing matches.
func Evaluate(days int) []Milestone {
	out := []Milestone{}
	for _, m := range milestones {
		if m.Days == days {
			out = append(out, m)
		}
	}
	return out
}

// Next returns the first milestone strictly above days.
func Next(days int) (Milestone, bool) {
	for _, m := range milestones {
		if m.Days > days {
			return m, true
		}
	}
	return Milestone{}, false
}

// Milestones returns a copy of the table.
func Milestones() []Milestone {
	return slices.Clone(milestones)
}

// Validate checks that table is ordered by strictly increasing Days.
func Validate(table []Milestone) error {
	for i := 1; i < len(table); i++ {
		if table[i].Days <= table[i-1].Days {
			return fmt.Errorf("milestone %q (%d days) must come after %q (%d days)",
				table[i].Name, table[i].Days, table[i-1].Name, table[i-1].Days)
		}
	}
	return nil
}
