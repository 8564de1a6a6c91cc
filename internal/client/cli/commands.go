package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
)

var errUnknownCommand = errors.New("unknown command")

type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }

type command struct {
	name    string
	usage   string
	summary string
	// minArgs is the number of required arguments.
	minArgs int
	run     func(a *App, ctx context.Context, args []string) error
}

// commandTable lists every REPL command except help and exit/quit, which
// runREPL handles itself.
var commandTable []command

func init() {
	commandTable = []command{
		{name: "sites", usage: "sites", summary: "list connected sites", run: (*App).sites},
		{name: "connect", usage: "connect", summary: "connect a WordPress site", run: (*App).connect},
		{name: "disconnect", usage: "disconnect <site-id>", summary: "remove a site", minArgs: 1, run: (*App).disconnect},
		{name: "switch", usage: "switch <site-id>", summary: "select the active site", minArgs: 1, run: (*App).switchSite},
		{name: "refresh", usage: "refresh", summary: "reload every collection of the active site", run: (*App).refresh},
		{name: "posts", usage: "posts", summary: "list posts", run: (*App).posts},
		{name: "pages", usage: "pages", summary: "list pages", run: (*App).pages},
		{name: "users", usage: "users", summary: "list users", run: (*App).users},
		{name: "plugins", usage: "plugins", summary: "list plugins", run: (*App).plugins},
		{name: "themes", usage: "themes", summary: "list themes", run: (*App).themes},
		{name: "show", usage: "show <post-id>", summary: "print a post as markdown", minArgs: 1, run: (*App).show},
		{name: "overview", usage: "overview", summary: "content counts of the active site", run: (*App).overview},
		{name: "courses", usage: "courses", summary: "list LMS courses", run: (*App).courses},
		{name: "students", usage: "students", summary: "list LMS students", run: (*App).students},
		{name: "lessons", usage: "lessons [course-id]", summary: "list lessons", run: (*App).lessons},
		{name: "quizzes", usage: "quizzes [course-id]", summary: "list quizzes", run: (*App).quizzes},
		{name: "course", usage: "course <course-id>", summary: "course details and completion stats", minArgs: 1, run: (*App).course},
		{name: "enroll", usage: "enroll <student-id> <course-id>", summary: "enroll a student", minArgs: 2, run: (*App).enroll},
		{name: "progress", usage: "progress <student-id> <course-id> <percent>", summary: "set course progress", minArgs: 3, run: (*App).progress},
		{name: "complete", usage: "complete <student-id> <course-id>", summary: "mark a course completed", minArgs: 2, run: (*App).complete},
		{name: "backup", usage: "backup <full|content|users>", summary: "upload a snapshot of the active site", minArgs: 1, run: (*App).backup},
		{name: "backups", usage: "backups", summary: "list backups of the active site", run: (*App).listBackups},
		{name: "download", usage: "download <backup-id> <file>", summary: "save a backup to a local file", minArgs: 2, run: (*App).download},
		{name: "rmbackup", usage: "rmbackup <backup-id>", summary: "delete a backup and its stored object", minArgs: 1, run: (*App).removeBackup},
	}
}

func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	for _, c := range commandTable {
		if c.name != cmd {
			continue
		}
		if len(args) < c.minArgs {
			return usageError{usage: c.usage}
		}
		return c.run(a, ctx, args)
	}
	return errUnknownCommand
}

func (a *App) Help() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 6, 4, 3, ' ', 0)
	fmt.Fprintln(w, "Available commands:")
	for _, c := range commandTable {
		fmt.Fprintf(w, "  %s\t%s\n", c.usage, c.summary)
	}
	fmt.Fprintf(w, "  %s\t%s\n", "help", "show this list")
	fmt.Fprintf(w, "  %s\t%s\n", "exit | quit", "leave the console")
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// table returns a tabwriter on a.out with header already written. Callers
// must Flush it.
func (a *App) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(a.out, 6, 4, 3, ' ', tabwriter.TabIndent)
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")
	return w
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t")+"\t")
}

// withSpinner runs fn with a terminal spinner when output is a terminal.
func (a *App) withSpinner(suffix string, fn func()) {
	if !a.spin {
		fn()
		return
	}
	loader := spinner.New(spinner.CharSets[11], 70*time.Millisecond)
	loader.Suffix = " " + suffix + "..."
	loader.Start()
	defer loader.Stop()
	fn()
}

func (a *App) requireActive() (*models.Site, error) {
	site := a.registry.Active()
	if site == nil {
		return nil, common.ErrNoActiveSite
	}
	return site, nil
}

func parseID(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

// optionalCourse parses the optional course argument; 0 means all courses.
func optionalCourse(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return parseID(args[0], "course id")
}
