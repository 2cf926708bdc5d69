// Package cli implements policyctl, a command-line client for the
// PolicySignoff API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/dmitrijs2005/policysignoff/internal/client/api"
	"github.com/dmitrijs2005/policysignoff/internal/client/config"
	"github.com/dmitrijs2005/policysignoff/internal/client/session"
	"github.com/dmitrijs2005/policysignoff/internal/filex"
	"github.com/spf13/pflag"
)

// SessionStore keeps the login between runs.
type SessionStore interface {
	api.TokenStore
	Load(ctx context.Context) (session.Session, error)
	Save(ctx context.Context, s session.Session) error
	Clear(ctx context.Context) error
	Close() error
}

type command struct {
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register": {"register [--name N] [--email E]", "create an account", (*App).register},
	"login":    {"login [--email E]", "log in and remember the session", (*App).login},
	"logout":   {"logout", "revoke the session", (*App).logout},
	"whoami":   {"whoami", "show the logged-in user", (*App).whoami},
	"list":     {"list", "list policies with your status", (*App).list},
	"show":     {"show <id>", "show a policy and its sign-off summary", (*App).show},
	"create":   {"create --title T --description D --due YYYY-MM-DD", "create a policy", (*App).create},
	"sign":     {"sign <id>", "sign off a policy", (*App).sign},
	"attach":   {"attach <id> <file>", "upload a pdf/doc/docx document to a policy you created", (*App).attach},
	"download": {"download <id> [--out DIR]", "download the document of a policy", (*App).download},
}

type App struct {
	config *config.Config
	client *api.Client
	store  SessionStore
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if _, err := filex.EnsureParentDir(c.SessionPath); err != nil {
		return nil, err
	}

	st, err := session.Open(ctx, c.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("error opening session database: %w", err)
	}

	return newApp(c, st, &http.Client{Timeout: c.Timeout}, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, st SessionStore, hc *http.Client, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		client: api.New(c.ServerURL, hc, st),
		store:  st,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) Close() error {
	return a.store.Close()
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.usage()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: policyctl [--server URL] [--session PATH] <command> [args]")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-52s %s\n", commands[name].usage, commands[name].help)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseID reads a positive policy id from args[i].
func parseID(args []string, i int) (int64, error) {
	if len(args) <= i {
		return 0, errors.New("policy id required")
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid policy id %q", args[i])
	}
	return id, nil
}
