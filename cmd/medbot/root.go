package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petasbytes/medbot/internal/chat"
	"github.com/petasbytes/medbot/internal/config"
	"github.com/petasbytes/medbot/internal/logger"
	"github.com/petasbytes/medbot/internal/prompts"
	"github.com/petasbytes/medbot/internal/provider"
	"github.com/petasbytes/medbot/internal/supervisor"
	"github.com/petasbytes/medbot/internal/telemetry"
	"github.com/petasbytes/medbot/internal/windowing"
	"github.com/petasbytes/medbot/internal/workflow"
)

const medbotLongDesc string = `medbot is a supervisor-routed medical chatbot.

Every message is classified by a supervisor that hands it to one of five
specialists (greeting, farewell, medicine, hospitals, departments) or
finishes the turn. Type 'exit' to leave.

Configuration is read from .medbot/config.toml (or --config), MEDBOT_*
environment variables and flags. The API key comes from
MEDBOT_ANTHROPIC_API_KEY or ANTHROPIC_API_KEY.

Examples:
  medbot
  medbot --model claude-3-5-haiku-latest --debug
  medbot --prompts ./my-prompts.yaml`

const medbotShortDesc string = "Supervisor-routed medical chatbot"

// rootFlags are the registry keys bound to viper on the root command.
var rootFlags = []string{
	config.FlagModel,
	config.FlagPrompts,
	config.FlagDebug,
	config.FlagJSON,
	config.FlagObserve,
}

type medbotCommander struct {
	configFile string
	model      string
	prompts    string
	debug      bool
	jsonLogs   bool
	observe    bool

	// clientOptions are appended to the API client's options; tests point
	// the client at a fake transport through them.
	clientOptions []option.RequestOption
	isTTY         func() bool
}

func NewMedbotCmd() *cobra.Command {
	return newMedbotCmd(&medbotCommander{isTTY: isTTY})
}

func newMedbotCmd(cmder *medbotCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "medbot",
		Short:        medbotShortDesc,
		Long:         medbotLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&cmder.configFile, "config", "c", "", "Path to config.toml (default ./.medbot/config.toml)")
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagPrompts, &cmder.prompts)
	config.AddBoolFlag(cmd, config.Flags, config.FlagDebug, &cmder.debug)
	config.AddBoolFlag(cmd, config.Flags, config.FlagJSON, &cmder.jsonLogs)
	config.AddBoolFlag(cmd, config.Flags, config.FlagObserve, &cmder.observe)

	cmd.AddCommand(newInitCmd(&cmder.configFile))
	return cmd
}

func (c *medbotCommander) run(cmd *cobra.Command) error {
	v, err := config.InitViper(c.configFile)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, rootFlags)
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	tty := c.isTTY()
	log := newLogger(cfg, tty, cmd.ErrOrStderr())
	windowing.SetLogger(log)
	telemetry.Configure(telemetry.Settings{Observe: cfg.Telemetry.Observe, Dir: cfg.Telemetry.Dir})

	cat, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return err
	}

	opts := append([]option.RequestOption{}, c.clientOptions...)
	if cfg.Anthropic.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	client, err := provider.NewAnthropicClient(cfg.Anthropic.APIKey, opts...)
	if err != nil {
		return err
	}

	model := anthropic.Model(cfg.Model)
	log.Debug("starting medbot", "model", model, "token_budget", cfg.TokenBudget, "max_agent_steps", cfg.MaxAgentSteps)

	sup := supervisor.New(client, cat,
		supervisor.WithModel(model),
		supervisor.WithMaxTokens(cfg.MaxTokens),
		supervisor.WithBudget(cfg.TokenBudget),
		supervisor.WithOutput(cmd.OutOrStdout()),
		supervisor.WithLogger(log),
	)
	nodes := workflow.Specialists(cat, client, workflow.Settings{
		Model:     model,
		MaxTokens: cfg.MaxTokens,
		Budget:    cfg.TokenBudget,
		MaxSteps:  cfg.MaxAgentSteps,
		Logger:    log,
	})

	session := chat.NewSession(chat.Deps{
		Stepper: workflow.New(sup, nodes),
		Stdin:   cmd.InOrStdin(),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		IsTTY:   func() bool { return tty },
		Banner:  cat.Banner,
		Logger:  log,
	})
	if err := session.Run(cmd.Context()); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config, tty bool, w io.Writer) *slog.Logger {
	return logger.New(
		logger.WithDebug(cfg.Log.Debug),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(tty),
		logger.WithWriter(w),
	)
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
