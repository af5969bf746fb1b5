package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/idilsaglam/todosync/internal/core"
	"github.com/idilsaglam/todosync/internal/identity"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/remote"
	"github.com/idilsaglam/todosync/internal/server"
	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/ui"
)

// Options tune behavior from root flags.
type Options struct {
	Group    bool   // plain list grouped by pending/done
	Plain    bool   // static panel instead of the interactive TUI
	BaseURL  string // backend base URL; falls back to TODO_API_URL
	StateDir string // installation state dir; falls back to TODO_STATE_DIR
}

const defaultBaseURL = "http://localhost:3000"

func (o *Options) resolve() error {
	if o.BaseURL == "" {
		o.BaseURL = os.Getenv("TODO_API_URL")
	}
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.StateDir == "" {
		o.StateDir = os.Getenv("TODO_STATE_DIR")
	}
	if o.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("home: %w", err)
		}
		o.StateDir = filepath.Join(home, ".todosync")
	}
	return nil
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if err := opt.resolve(); err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doList(opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: todo add <title...>")
			return 2
		}
		return doAdd(opt, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: todo done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return doToggle(opt, n)

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: todo rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("rm: not a number: " + a[0])
			return 2
		}
		return doRemove(opt, n)

	case "id":
		if len(a) > 1 || (len(a) == 1 && a[0] != "reset") {
			ui.Fail("usage: todo id [reset]")
			return 2
		}
		return doIdentity(opt, len(a) == 1)

	case "serve":
		addr := ":3000"
		if len(a) == 1 {
			addr = a[0]
		} else if len(a) > 1 {
			ui.Fail("usage: todo serve [addr]")
			return 2
		}
		return doServe(opt, addr)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`todo - a todo list synced with a remote server

Usage:
  todo <subcommand> [args]

Subcommands:
  add <title...>     Add a new item (title can be multiple words)
  ls                 List items (interactive TUI; -plain for static output)
  done <index>       Toggle done for item at 1-based index
  rm <index>         Remove item at 1-based index
  id [reset]         Show (or reset) the installation identity
  serve [addr]       Run a local development server (default :3000)

Environment:
  TODO_API_URL       Backend base URL (default %s)
  TODO_STATE_DIR     State directory (default ~/.todosync)

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
`, defaultBaseURL)
}

// -------------- composition ----------------

// openStore picks the durable medium: bbolt first, a JSON file when the
// database cannot be opened (say, locked by another process), memory as
// the last resort.
func openStore(opt Options) store.Store {
	if err := os.MkdirAll(opt.StateDir, 0o700); err != nil {
		glog.Warningf("state dir %s: %v", opt.StateDir, err)
		return store.NewMem()
	}
	b, err := store.NewBolt(filepath.Join(opt.StateDir, "state.db"))
	if err != nil {
		glog.Warningf("open state.db: %v (using state.json)", err)
		return store.NewFile(filepath.Join(opt.StateDir, "state.json"))
	}
	return b
}

func newSession(opt Options) (*core.Controller, *identity.Provider) {
	st := openStore(opt)
	prov := identity.NewProvider(st)
	gw := remote.NewGateway(opt.BaseURL, prov.Identity())
	return core.NewController(gw), prov
}

// -------------- subcommand impls ----------------

func doList(opt Options) int {
	ctrl, _ := newSession(opt)
	if !opt.Plain {
		if err := ui.RunTUI(ctrl); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0
	}

	ctrl.Refresh(context.Background())
	if e := ctrl.LastError(); e != "" {
		ui.Fail("fetch: " + e)
		return 1
	}
	recs := ctrl.Records()

	// Header + progress
	d, p := stats(recs)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(ui.Current().Title, "Todos"),
		ui.C(ui.Current().Success, "✔"), d,
		ui.C(ui.Current().Pending, "•"), p,
		ui.C(ui.Current().Accent, "Total"), len(recs),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(recs)...)
	} else {
		lines = append(lines, flatLines(recs)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func doAdd(opt Options, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail("add: empty title")
		return 2
	}
	ctrl, _ := newSession(opt)
	if !ctrl.Add(context.Background(), title) {
		ui.Fail("add: " + ctrl.LastError())
		return 1
	}
	ui.OK("added")
	return 0
}

// resolveIndex maps a 1-based display index onto a record id using a
// fresh fetch, so indexes always refer to what the server shows now.
func resolveIndex(ctrl *core.Controller, userIndex int) (string, int) {
	ctrl.Refresh(context.Background())
	if e := ctrl.LastError(); e != "" {
		ui.Fail("fetch: " + e)
		return "", 1
	}
	recs := ctrl.Records()
	if userIndex < 1 || userIndex > len(recs) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(recs), userIndex))
		fmt.Fprintln(os.Stderr, ui.C(ui.Current().Muted, "Hint: run `todo ls` to see valid indexes"))
		return "", 2
	}
	return recs[userIndex-1].ID, 0
}

func doToggle(opt Options, userIndex int) int {
	ctrl, _ := newSession(opt)
	id, code := resolveIndex(ctrl, userIndex)
	if code != 0 {
		return code
	}
	ctrl.ToggleDone(context.Background(), id)
	if e := ctrl.LastError(); e != "" {
		ui.Fail("done: " + e)
		return 1
	}
	ui.OK("toggled")
	return 0
}

func doRemove(opt Options, userIndex int) int {
	ctrl, _ := newSession(opt)
	id, code := resolveIndex(ctrl, userIndex)
	if code != 0 {
		return code
	}
	ctrl.Remove(context.Background(), id)
	if e := ctrl.LastError(); e != "" {
		ui.Fail("rm: " + e)
		return 1
	}
	ui.OK("removed")
	return 0
}

func doIdentity(opt Options, reset bool) int {
	_, prov := newSession(opt)
	if reset {
		if err := prov.Reset(); err != nil {
			ui.Fail("reset: " + err.Error())
			return 1
		}
		ui.OK("identity reset; you are a new anonymous user")
		return 0
	}
	lines := []string{
		ui.C(ui.Current().Title, "Installation identity"),
		prov.Identity(),
	}
	if prov.Volatile() {
		lines = append(lines, ui.C(ui.Current().Error, "not persisted: will change on next run"))
	}
	lines = append(lines, ui.C(ui.Current().Muted, "server: "+opt.BaseURL))
	ui.Panel(lines)
	return 0
}

func doServe(opt Options, addr string) int {
	if err := os.MkdirAll(opt.StateDir, 0o700); err != nil {
		ui.Fail("state dir: " + err.Error())
		return 1
	}
	srv, err := server.New(filepath.Join(opt.StateDir, "server.db"))
	if err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	defer srv.Close()
	if err := srv.Run(addr); err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	return 0
}

// -------------- rendering helpers --------------

func stats(recs []model.Todo) (done, pending int) {
	for _, t := range recs {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(recs []model.Todo) []string {
	if len(recs) == 0 {
		return []string{ui.C(ui.Current().Muted, "no items")}
	}
	out := make([]string, 0, len(recs))
	for i, t := range recs {
		idx := fmt.Sprintf("%2d.", i+1)
		box := ui.Current().BoxUnchecked
		color := ui.Current().Muted
		if t.Done {
			box, color = ui.Current().BoxChecked, ui.Current().Success
		}
		title := t.Title
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.C("\033[2m", idx), ui.C(color, box), title))
	}
	return out
}

func groupLines(recs []model.Todo) []string {
	var pend, done []model.Todo
	for _, t := range recs {
		if t.Done {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
