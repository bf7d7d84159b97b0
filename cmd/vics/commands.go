package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Cyclone1070/vics/internal/storage"
	"github.com/Cyclone1070/vics/internal/ui"
	"github.com/urfave/cli/v3"
)

// NewRootCommand builds the vics command tree on top of app.
func NewRootCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:  "vics",
		Usage: "an autonomous coding agent that works inside a sandboxed workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "directory the agent may read, write and run commands in", Sources: cli.EnvVars("VICS_WORKSPACE")},
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: "model provider: openai, anthropic, gemini or ollama", Sources: cli.EnvVars("VICS_PROVIDER")},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name for the selected provider", Sources: cli.EnvVars("VICS_MODEL")},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path of the YAML configuration file"},
			&cli.IntFlag{Name: "max-iterations", Usage: "maximum tool rounds per task"},
			&cli.BoolFlag{Name: "no-history", Usage: "do not record runs in the history database"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug output and show each iteration"},
		},
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "start an interactive session",
				Action: app.chat,
			},
			{
				Name:      "ask",
				Usage:     "run a single task and exit",
				ArgsUsage: "PROMPT",
				Action:    app.ask,
			},
			{
				Name:  "history",
				Usage: "list recorded runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of runs to list, 0 for all"},
				},
				Action: app.historyList,
				Commands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "print the transcript of a run",
						ArgsUsage: "ID",
						Action:    app.historyShow,
					},
				},
			},
		},
		Action: app.chat,
	}
}

func (a *App) ask(ctx context.Context, cmd *cli.Command) error {
	task := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if task == "" {
		return errors.New("ask needs a prompt, e.g. vics ask \"list the files\"")
	}

	rt, err := a.newRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	report := a.runTask(runCtx, rt, rt.NewSession(), task)
	if !report.Succeeded() {
		return errRunAborted
	}
	return nil
}

func (a *App) chat(ctx context.Context, cmd *cli.Command) error {
	rt, err := a.newRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Fprint(a.Stdout, ui.Banner(a.Interactive))
	fmt.Fprintf(a.Stdout, "Workspace: %s\nModel: %s/%s\nType a task, \"reset\" to start over or \"quit\" to leave.\n\n",
		rt.Guard.Root(), rt.Adapter.Name(), rt.Config.Provider.ActiveModel())

	session := rt.NewSession()
	scanner := bufio.NewScanner(a.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(a.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.Stdout)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "reset":
			session.Reset()
			fmt.Fprintln(a.Stdout, "Conversation cleared.")
			continue
		}

		// Ctrl-C cancels the running task, not the chat
		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		a.runTask(turnCtx, rt, session, line)
		stop()
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintln(a.Stdout)
	}
}

func (a *App) openHistory(cmd *cli.Command) (*storage.HistoryStore, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Path == "" {
		return nil, errors.New("no history database configured")
	}
	return storage.OpenHistory(cfg.Storage.Path)
}

func (a *App) historyList(ctx context.Context, cmd *cli.Command) error {
	store, err := a.openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.Stdout, "No runs recorded yet.")
		return nil
	}
	fmt.Fprintln(a.Stdout, formatRunTable(runs))
	return nil
}

func (a *App) historyShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("history show needs a run id")
	}
	store, err := a.openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	formatRecord(a.Stdout, rec)
	return nil
}
