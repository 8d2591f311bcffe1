// Command teacherctl is the terminal client of the teacher dashboard. The session
// survives between invocations in a JSON file or a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/app"
	"teacherdash/internal/config"
	"teacherdash/internal/logger"
	"teacherdash/internal/session"
	"teacherdash/internal/store"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotSignedIn = errors.New("Avval tizimga kiring: teacherctl login -phone RAQAM")
)

const (
	storeFile   = "file"
	storeSQLite = "sqlite"
	// sqliteScope is the row scope of the CLI session inside the database.
	sqliteScope = "cli"
)

type commandLine struct {
	cfg config.App
	log logger.Logger
	out io.Writer
	now func() time.Time

	ctrl  *app.Controller
	close func() error
}

func main() {
	cli := &commandLine{cfg: config.Load(), log: logger.Discard(), out: os.Stdout}
	err := cli.run(os.Args)
	if cli.close != nil {
		_ = cli.close()
	}
	switch {
	case err == nil:
	case errors.Is(err, errHelp):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage: teacherctl [-api URL] [-store file|sqlite] [-session PATH] [-v] COMMAND")
	fmt.Fprintln(cli.out, "Commands:")
	fmt.Fprintln(cli.out, "  login -phone PHONE                          - sign in, the password is prompted")
	fmt.Fprintln(cli.out, "  logout                                      - forget the stored session")
	fmt.Fprintln(cli.out, "  status                                      - show who is signed in")
	fmt.Fprintln(cli.out, "  groups                                      - list your groups")
	fmt.Fprintln(cli.out, "  students -group GROUP                       - list a group's students")
	fmt.Fprintln(cli.out, "  attendance show -group GROUP [-date DATE]   - show the attendance sheet")
	fmt.Fprintln(cli.out, "  attendance mark -group GROUP [-date DATE] [-all STATUS] [STUDENT=STATUS...]")
	fmt.Fprintln(cli.out, "  feedback list -group GROUP [-date DATE]     - list daily feedback")
	fmt.Fprintln(cli.out, "  feedback add -group GROUP -student STUDENT -ball SCORE [-comment TEXT]")
	fmt.Fprintln(cli.out, "  export -group GROUP [-date DATE] [-out FILE] - save attendance as xlsx")
	fmt.Fprintln(cli.out, "GROUP is a group id or code, STUDENT an id or full name, DATE is YYYY-MM-DD.")
}

type command func(ctx context.Context, args []string) error

func (cli *commandLine) commands() map[string]command {
	return map[string]command{
		"login":      cli.login,
		"logout":     cli.logout,
		"status":     cli.status,
		"groups":     cli.groups,
		"students":   cli.students,
		"attendance": cli.attendance,
		"feedback":   cli.feedback,
		"export":     cli.export,
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	global := flag.NewFlagSet("teacherctl", flag.ContinueOnError)
	global.SetOutput(cli.out)
	apiURL := global.String("api", cli.cfg.APIBaseURL, "teacher API base URL")
	kind := global.String("store", storeFile, "where the session is kept: file or sqlite")
	path := global.String("session", "", "session file or database (default under the user config dir)")
	verbose := global.Bool("v", false, "log to stderr")
	if err := global.Parse(args[1:]); err != nil {
		return errHelp
	}
	rest := global.Args()
	if len(rest) == 0 {
		cli.printUsage()
		return errHelp
	}
	cmd, ok := cli.commands()[rest[0]]
	if !ok {
		cli.printUsage()
		return errHelp
	}

	cli.cfg.APIBaseURL = strings.TrimRight(*apiURL, "/")
	if *verbose {
		cli.log = logger.New("teacherctl", cli.cfg)
	}
	ctx := context.Background()
	if err := cli.open(ctx, *kind, *path); err != nil {
		return err
	}
	return cmd(ctx, rest[1:])
}

// open builds the controller over the chosen session store.
func (cli *commandLine) open(ctx context.Context, kind, path string) error {
	if path == "" {
		path = defaultSessionPath(kind)
	}
	var st session.Storage
	switch kind {
	case storeFile:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return errors.Wrap(err, "creating session directory")
		}
		st = session.NewFile(path)
	case storeSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return errors.Wrap(err, "creating session directory")
		}
		db, err := store.NewDB(ctx, store.SQLite, path)
		if err != nil {
			return errors.Wrap(err, "opening session database")
		}
		cli.close = db.Close
		st = db.Values(sqliteScope)
	default:
		return fmt.Errorf("%q: unknown session store", kind)
	}

	mgr := session.NewManager(st, cli.log)
	client := apiclient.New(cli.cfg.APIBaseURL, cli.cfg.APITimeout, mgr, mgr.Clear)
	client.AvatarMaxPx = cli.cfg.AvatarMaxPx
	cli.ctrl = app.New(client, mgr, cli.log)
	if cli.now != nil {
		cli.ctrl.Now = cli.now
	}
	return nil
}

func defaultSessionPath(kind string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "session.json"
	if kind == storeSQLite {
		name = "session.db"
	}
	return filepath.Join(dir, "teacherdash", name)
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(cli.out)
	phone := fs.String("phone", "", "phone number, with or without +998")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *phone == "" {
		fs.Usage()
		return errHelp
	}
	fmt.Fprint(cli.out, "Parol: ")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return errHelp
	}
	if err := cli.ctrl.Login(ctx, *phone, string(pwd)); err != nil {
		return err
	}
	t, _ := cli.ctrl.Teacher()
	fmt.Fprintf(cli.out, "Xush kelibsiz, %s!\n", t.FullName())
	return nil
}

func (cli *commandLine) logout(ctx context.Context, _ []string) error {
	if err := cli.ctrl.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Tizimdan chiqildi.")
	return nil
}

// ready restores the stored session and runs the initial load.
func (cli *commandLine) ready(ctx context.Context) error {
	switch cli.ctrl.Start(ctx) {
	case app.Ready:
		return nil
	case app.Failed:
		return errors.New(cli.ctrl.LoadError())
	}
	return errNotSignedIn
}

func (cli *commandLine) status(ctx context.Context, _ []string) error {
	state := cli.ctrl.Start(ctx)
	fmt.Fprintf(cli.out, "Holat: %s\n", state)
	switch state {
	case app.Ready:
		t, _ := cli.ctrl.Teacher()
		fmt.Fprintf(cli.out, "O'qituvchi: %s (%s)\n", t.FullName(), t.Phone)
		fmt.Fprintf(cli.out, "Guruhlar: %d\n", len(cli.ctrl.Groups()))
		fmt.Fprintf(cli.out, "Ekran: %s\n", cli.ctrl.Screen())
	case app.Failed:
		fmt.Fprintf(cli.out, "Xato: %s\n", cli.ctrl.LoadError())
	}
	return nil
}
