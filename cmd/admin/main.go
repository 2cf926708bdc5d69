// Command admin runs maintenance tasks against the PolicySignoff database:
// applying migrations, loading the demo data set and creating users.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/policysignoff/internal/clock"
	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/server/config"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/policysignoff/internal/server/seed"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
	"github.com/dmitrijs2005/policysignoff/internal/validate"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const usage = `Usage: admin [--dsn DSN] <command> [flags]

Commands:
  migrate                          apply database migrations
  seed [--password P]              replace all data with the demo data set
  adduser --name N --email E       create a user, prompting for the password
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	config.ApplyEnv(cfg)

	fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			return nil
		}
		return err
	}

	args := fs.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("command required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()

	switch args[0] {
	case "migrate":
		if err := rm.RunMigrations(ctx, db); err != nil {
			return err
		}
		fmt.Println("Migrations applied.")
		return nil

	case "seed":
		sfs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
		password := sfs.String("password", seed.DefaultPassword, "password for every seeded user")
		if err := sfs.Parse(args[1:]); err != nil {
			return err
		}
		res, err := seed.Run(ctx, db, rm, *password)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d policies, %d sign-offs.\n", res.Users, res.Policies, res.Signoffs)
		return nil

	case "adduser":
		afs := pflag.NewFlagSet("adduser", pflag.ContinueOnError)
		name := afs.String("name", "", "display name")
		email := afs.String("email", "", "email address")
		if err := afs.Parse(args[1:]); err != nil {
			return err
		}

		fmt.Print("Enter password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)

		us := services.NewUserService(db, rm, validate.New(), clock.Real(), cfg)
		u, err := us.Register(ctx, services.RegisterInput{Name: *name, Email: *email, Password: string(pw)})
		if err != nil {
			var ve *common.ValidationError
			if errors.As(err, &ve) {
				for field, msgs := range ve.Fields {
					for _, m := range msgs {
						fmt.Fprintf(os.Stderr, "  %s: %s\n", field, m)
					}
				}
			}
			return err
		}
		fmt.Printf("Created user %d <%s>.\n", u.ID, u.Email)
		return nil
	}

	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}
