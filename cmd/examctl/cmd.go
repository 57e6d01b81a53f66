package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/stats"
	"github.com/mind-engage/examsim/internal/user"
)

var errHelp = errors.New("help provided")

type statsCollector interface {
	Collect(ctx context.Context, now time.Time) (stats.Report, error)
}

type commandLine struct {
	users  user.Store
	events activity.Log
	stats  statsCollector
	out    io.Writer
	now    func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  examtypes                                   - list exam types and pause policies")
	fmt.Fprintln(cli.out, "  adduser -username NAME -password PW [-role student|admin]")
	fmt.Fprintln(cli.out, "  entitlement -user USERNAME                  - show a user's premium entitlement")
	fmt.Fprintln(cli.out, "  grant -user USERNAME -days N|-lifetime|-lock - change a user's premium status")
	fmt.Fprintln(cli.out, "  stats                                       - usage statistics")
	fmt.Fprintln(cli.out, "  verify                                      - check exam types and stored premium expiries")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("username", "", "login name")
	addUserPwd := addUserCmd.String("password", "", "initial password")
	addUserRole := addUserCmd.String("role", user.RoleStudent, "student or admin")

	entCmd := flag.NewFlagSet("entitlement", flag.ContinueOnError)
	entUser := entCmd.String("user", "", "username")

	grantCmd := flag.NewFlagSet("grant", flag.ContinueOnError)
	grantUser := grantCmd.String("user", "", "username")
	grantDays := grantCmd.Int("days", 0, "days of premium to add")
	grantLifetime := grantCmd.Bool("lifetime", false, "grant lifetime premium")
	grantLock := grantCmd.Bool("lock", false, "block premium access")

	for _, fs := range []*flag.FlagSet{addUserCmd, entCmd, grantCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "examtypes":
		return cli.listExamTypes()
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserName == "" || *addUserPwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserName, *addUserPwd, *addUserRole)
	case "entitlement":
		if err := entCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *entUser == "" {
			entCmd.Usage()
			return errHelp
		}
		return cli.showEntitlement(ctx, *entUser)
	case "grant":
		if err := grantCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *grantUser == "" {
			grantCmd.Usage()
			return errHelp
		}
		return cli.grant(ctx, *grantUser, user.Grant{Days: *grantDays, Lifetime: *grantLifetime, Lock: *grantLock})
	case "stats":
		return cli.showStats(ctx)
	case "verify":
		return cli.verify(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}
