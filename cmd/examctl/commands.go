package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/mind-engage/examsim/internal/examtype"
	"github.com/mind-engage/examsim/internal/user"
)

var errVerifyFailed = errors.New("verification found problems")

func (cli *commandLine) table(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(cli.out)
	t.SetHeader(header)
	return t
}

func (cli *commandLine) title(s string) {
	color.New(color.FgYellow).Fprintln(cli.out, "\n"+s)
}

func ints(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}

func optInt(p *int) string {
	if p == nil {
		return "unlimited"
	}
	return strconv.Itoa(*p)
}

func (cli *commandLine) listExamTypes() error {
	cli.title("Exam types")
	t := cli.table("ID", "Title", "Questions", "Minutes", "Options", "Multi", "Pause", "Checkpoints", "Pause min")
	for _, d := range examtype.List() {
		pol := examtype.ResolvePausePolicy(d.ID)
		t.Append([]string{
			d.ID, d.Title,
			strconv.Itoa(d.QuestionCount), strconv.Itoa(d.DurationMinutes), strconv.Itoa(d.OptionsPerQuestion),
			strconv.FormatBool(d.AllowsMultipleSelection), strconv.FormatBool(pol.Allowed),
			ints(pol.CheckpointMinutes), strconv.Itoa(pol.PauseDurationMinutes),
		})
	}
	t.Render()
	fmt.Fprintf(cli.out, "unknown ids resolve to %q\n", examtype.Default().ID)
	return nil
}

func (cli *commandLine) addUser(ctx context.Context, name, pwd, role string) error {
	u, err := cli.users.Create(ctx, name, pwd, role)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "created %s (%s) id=%s\n", u.Username, u.Role, u.ID)
	return nil
}

func (cli *commandLine) printEntitlement(u user.User) {
	snap := entitlement.Compute(u.EntitlementRecord(), cli.now())
	expires := "-"
	if snap.ExpiresAt != nil {
		expires = *snap.ExpiresAt
	}
	days := "-"
	if snap.RemainingDays != nil {
		days = strconv.Itoa(*snap.RemainingDays)
	}
	t := cli.table("User", "Premium", "Lifetime", "Remaining days", "Expires", "Daily clicks")
	t.Append([]string{
		u.Username, strconv.FormatBool(snap.IsPremium), strconv.FormatBool(snap.Lifetime),
		days, expires, optInt(snap.DailyClickQuota),
	})
	t.Render()
}

func (cli *commandLine) showEntitlement(ctx context.Context, username string) error {
	u, err := cli.users.GetByUsername(ctx, username)
	if err != nil {
		return errors.Wrapf(err, "user %q", username)
	}
	cli.title("Entitlement")
	cli.printEntitlement(u)
	return nil
}

func (cli *commandLine) grant(ctx context.Context, username string, g user.Grant) error {
	u, err := cli.users.GetByUsername(ctx, username)
	if err != nil {
		return errors.Wrapf(err, "user %q", username)
	}
	now := cli.now()
	u, err = user.ApplyGrant(ctx, cli.users, u.ID, g, now)
	if err != nil {
		return err
	}
	if cli.events != nil {
		err := cli.events.Append(ctx, activity.Event{
			Type: activity.PremiumGranted, Key: u.ID,
			Data: map[string]any{"grant": g, "by": "examctl"}, CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	color.New(color.FgGreen).Fprintln(cli.out, "premium updated")
	cli.printEntitlement(u)
	return nil
}

func (cli *commandLine) showStats(ctx context.Context) error {
	r, err := cli.stats.Collect(ctx, cli.now())
	if err != nil {
		return err
	}
	cli.title("Usage statistics")
	t := cli.table("Metric", "Value")
	for _, row := range [][2]string{
		{"Users", strconv.Itoa(r.UsersTotal)},
		{"Premium active", strconv.Itoa(r.PremiumActive)},
		{"Premium lifetime", strconv.Itoa(r.PremiumLifetime)},
		{"Premium expiring in 7 days", strconv.Itoa(r.PremiumExpiring)},
		{"Sessions started (24h)", strconv.Itoa(r.SessionsStarted)},
		{"Sessions submitted (24h)", strconv.Itoa(r.SessionsSubmitted)},
		{"Insights clicks (24h)", strconv.Itoa(r.InsightsClicks)},
		{"Feedback entries", strconv.Itoa(r.FeedbackCount)},
		{"Average rating", strconv.FormatFloat(r.AverageRating, 'f', 2, 64)},
	} {
		t.Append(row[:])
	}
	t.Render()
	return nil
}

// verify checks every registered exam type and reports users whose stored
// premium expiry cannot be parsed.
func (cli *commandLine) verify(ctx context.Context) error {
	problems := 0

	cli.title("Exam types")
	for _, d := range examtype.List() {
		if err := examtype.Validate(d); err != nil {
			color.New(color.FgRed).Fprintf(cli.out, "  %s: %v\n", d.ID, err)
			problems++
			continue
		}
		fmt.Fprintf(cli.out, "  %s ok\n", d.ID)
	}

	cli.title("Premium expiries")
	users, err := cli.users.List(ctx)
	if err != nil {
		return err
	}
	t := cli.table("User", "ID", "Stored expiry")
	bad := 0
	for _, u := range users {
		if u.PremiumExpiresAt == "" {
			continue
		}
		if _, ok := entitlement.ParseTimestamp(u.PremiumExpiresAt); !ok {
			t.Append([]string{u.Username, u.ID, u.PremiumExpiresAt})
			bad++
		}
	}
	if bad > 0 {
		t.Render()
		problems += bad
	} else {
		fmt.Fprintf(cli.out, "  %d users checked, all expiries readable\n", len(users))
	}

	if problems > 0 {
		return errors.Wrapf(errVerifyFailed, "%d problem(s)", problems)
	}
	color.New(color.FgGreen).Fprintln(cli.out, "\nall checks passed")
	return nil
}
