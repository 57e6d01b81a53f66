package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/mind-engage/examsim/internal/stats"
	"github.com/mind-engage/examsim/internal/user"
)

type cliTest struct {
	name       string
	args       []string
	wantErr    bool
	wantErrStr string
	wantOut    []string
}

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newCLI(t *testing.T) (*commandLine, *bytes.Buffer, *sql.DB) {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	users := user.NewSQLStore(conn)
	events := activity.NewEventRepo(conn)
	_, err = users.Create(context.Background(), "dana", "pw", user.RoleStudent)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &commandLine{
		users:  users,
		events: events,
		stats:  &stats.Collector{Users: users, Events: events, Feedback: feedback.NewStore(conn)},
		out:    out,
		now:    func() time.Time { return testNow },
	}, out, conn
}

func TestCommandLine(t *testing.T) {
	tests := []cliTest{
		{name: "no args", args: []string{"examctl"}, wantErr: true, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"examctl", "frobnicate"}, wantErr: true},
		{name: "exam types", args: []string{"examctl", "examtypes"}, wantOut: []string{"pmp", "unknown ids resolve to"}},
		{name: "adduser missing password", args: []string{"examctl", "adduser", "-username", "x"}, wantErr: true},
		{name: "adduser bad role", args: []string{"examctl", "adduser", "-username", "x", "-password", "p", "-role", "root"}, wantErr: true, wantErrStr: user.ErrInvalidRole.Error()},
		{name: "adduser", args: []string{"examctl", "adduser", "-username", "eve", "-password", "p"}, wantOut: []string{"created eve (student)"}},
		{name: "adduser duplicate", args: []string{"examctl", "adduser", "-username", "dana", "-password", "p"}, wantErr: true},
		{name: "entitlement needs user", args: []string{"examctl", "entitlement"}, wantErr: true},
		{name: "entitlement unknown user", args: []string{"examctl", "entitlement", "-user", "nobody"}, wantErr: true, wantErrStr: `user "nobody"`},
		{name: "entitlement", args: []string{"examctl", "entitlement", "-user", "dana"}, wantOut: []string{"dana", "false"}},
		{name: "grant without option", args: []string{"examctl", "grant", "-user", "dana"}, wantErr: true, wantErrStr: user.ErrInvalidGrant.Error()},
		{name: "grant too many days", args: []string{"examctl", "grant", "-user", "dana", "-days", "200000"}, wantErr: true, wantErrStr: user.ErrInvalidGrant.Error()},
		{name: "grant days", args: []string{"examctl", "grant", "-user", "dana", "-days", "45"}, wantOut: []string{"premium updated", "45", "2025-07-16"}},
		{name: "grant lifetime", args: []string{"examctl", "grant", "-user", "dana", "-lifetime"}, wantOut: []string{"premium updated", "unlimited"}},
		{name: "stats", args: []string{"examctl", "stats"}, wantOut: []string{"Users", "Average rating"}},
		{name: "verify", args: []string{"examctl", "verify"}, wantOut: []string{"1 users checked", "all checks passed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out, _ := newCLI(t)
			err := cli.run(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrStr != "" {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestGrantRecordsEvent(t *testing.T) {
	cli, _, conn := newCLI(t)
	require.NoError(t, cli.run([]string{"examctl", "grant", "-user", "dana", "-days", "10"}))

	n, err := activity.NewEventRepo(conn).CountSince(context.Background(), activity.PremiumGranted, testNow.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVerifyReportsUnreadableExpiry(t *testing.T) {
	cli, out, conn := newCLI(t)
	_, err := conn.Exec(`UPDATE users SET premium_locked = 0, premium_expires_at = 'next tuesday' WHERE username = 'dana'`)
	require.NoError(t, err)

	err = cli.run([]string{"examctl", "verify"})
	require.ErrorIs(t, err, errVerifyFailed)
	assert.Contains(t, err.Error(), "1 problem(s)")
	assert.Contains(t, out.String(), "next tuesday")
}
