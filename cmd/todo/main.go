package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/todosync/internal/cli"
	"github.com/idilsaglam/todosync/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group plain output by pending/done")
	plain := flag.Bool("plain", false, "print a static panel instead of the interactive TUI")
	theme := flag.String("theme", "classic", "plain output theme: classic, neon, mono")
	apiURL := flag.String("api", "", "backend base URL (overrides TODO_API_URL)")
	stateDir := flag.String("state", "", "state directory (overrides TODO_STATE_DIR)")
	flag.Parse()

	ui.SetTheme(*theme)

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	code := cli.Run(args, cli.Options{
		Group:    *groupPending,
		Plain:    *plain,
		BaseURL:  *apiURL,
		StateDir: *stateDir,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
