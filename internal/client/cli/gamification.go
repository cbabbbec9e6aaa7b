package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cookquest/internal/client/gamification"
)

func (a *App) Progress(ctx context.Context) error {
	p, err := a.services.Gamification.Progress(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Level %d, %d XP", p.Level, p.XP)
	if p.NextLevelXP > 0 {
		fmt.Fprintf(a.out, " (%d to next level)", p.NextLevelXP-p.XP)
	}
	fmt.Fprintf(a.out, "\nStreak: %d days (best %d)\n", p.CurrentStreak, p.LongestStreak)

	if m, ok := gamification.Next(p.CurrentStreak); ok {
		fmt.Fprintf(a.out, "Next milestone: %s in %d days\n", m.Name, m.Days-p.CurrentStreak)
	}
	return nil
}

func (a *App) AddXP(ctx context.Context, action string, amount int) error {
	resp, err := a.services.Gamification.AddXP(ctx, action, amount)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "+%d XP, total %d (level %d)\n", amount, resp.XP, resp.Level)
	if resp.LeveledUp {
		fmt.Fprintln(a.out, "Level up!")
	}
	return nil
}

func (a *App) Streak(ctx context.Context) error {
	res, err := a.services.Gamification.IncrementStreak(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Streak: %d days (best %d)\n", res.Days, res.Longest)
	for _, m := range res.Milestones {
		fmt.Fprintf(a.out, "Milestone reached: %s! %s\n", m.Name, m.Description)
	}
	if res.AwardedXP > 0 {
		fmt.Fprintf(a.out, "+%d XP\n", res.AwardedXP)
	}
	return nil
}

// Milestones lists the table. The current streak is marked when progress
// can be fetched; otherwise the plain table is shown.
func (a *App) Milestones(ctx context.Context) error {
	current := -1
	if a.isLoggedIn() {
		if p, err := a.services.Gamification.Progress(ctx); err == nil {
			current = p.CurrentStreak
		} else {
			a.logger.Debug(ctx, "progress unavailable for milestones", "error", err)
		}
	}

	for _, m := range gamification.Milestones() {
		mark := " "
		if current >= m.Days {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] %4d days  %-18s %s\n", mark, m.Days, m.Name, m.Reward)
	}
	return nil
}
