package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/config"
	"github.com/spec-kit/crm-console/internal/form"
	"github.com/spec-kit/crm-console/internal/gateway"
	"github.com/spec-kit/crm-console/internal/notify"
	"github.com/spec-kit/crm-console/internal/observability"
	"github.com/spec-kit/crm-console/internal/session"
	"github.com/spec-kit/crm-console/internal/tui"
	"github.com/spec-kit/crm-console/internal/workflow"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "board")
	}

	root := &cli.Command{
		Name:  "crm-console",
		Usage: "Terminal console for the CRM support board",
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			boardCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

// runtime bundles the pieces every subcommand needs.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *gateway.Client
	sessions *session.Manager
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	client := gateway.NewClient(cfg.API.BaseURL, cfg.API.Timeout())
	store := session.NewStore(cfg.Session.FilePath)
	return &runtime{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		sessions: session.NewManager(store, client, logger),
	}, nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate and store a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck

			state, err := rt.sessions.Login(ctx, cmd.String("email"), cmd.String("password"))
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Printf("Logged in as %s (%s)\n", state.User.Name, state.User.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Check out and clear the stored session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck

			state, err := rt.sessions.Restore(ctx)
			if err != nil {
				return err
			}
			if state == nil {
				fmt.Println("No stored session.")
				return nil
			}
			if err := rt.sessions.Logout(ctx, state.User); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Open the support-ticket board",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck

			state, err := rt.sessions.Restore(ctx)
			if err != nil {
				return err
			}
			if state == nil {
				return errors.New("not logged in; run `crm-console login` first")
			}

			notifier := notify.NewDispatcher(rt.client, rt.logger)
			engine := workflow.NewEngine(rt.client, notifier, rt.logger)
			drawer := form.NewController(engine, rt.logger)
			model := tui.New(engine, drawer, state.User, rt.logger)

			program := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("board exited: %w", err)
			}
			return nil
		},
	}
}
