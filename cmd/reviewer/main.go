package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ChamsBouzaiene/reviewer/internal/config"
	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/ChamsBouzaiene/reviewer/internal/providers"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes.
const (
	exitSummary         = 0
	exitFailure         = 1
	exitBudgetExhausted = 2
)

// gatewayFactory builds the model client from resolved configuration.
type gatewayFactory func(config.Config) (engine.LLMClient, error)

type app struct {
	v          *viper.Viper
	newLLM     gatewayFactory
	configPath string
	code       int
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, providers.NewLLMClient)
	stop()
	os.Exit(code)
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, newLLM gatewayFactory) int {
	a := &app{v: config.New(), newLLM: newLLM}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		return exitFailure
	}
	return a.code
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "reviewer [directory]",
		Short: "Review a source tree with a model and apply its fixes",
		Long: "reviewer lets a language model list, read and rewrite the web sources " +
			"(.js .jsx .ts .tsx .html .css) under a directory, then prints its summary.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			return config.ReadFile(a.v, a.configPath)
		},
		RunE: a.runReview,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/reviewer/config.yaml)")
	pf.String("provider", config.DefaultProvider, "model provider: "+strings.Join(config.ProviderNames(), ", "))
	pf.String("model", "", "model name (default depends on provider)")
	pf.String("api-key", "", "API key (default from the provider's environment variable)")
	pf.String("base-url", "", "override the provider endpoint")
	pf.Bool("dry-run", false, "only list and read files; never write")
	pf.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.String("log-file", "", "also write logs to this file (rotated)")

	f := root.Flags()
	f.Int("max-steps", config.DefaultMaxSteps, "maximum model round-trips")
	f.Duration("call-timeout", config.DefaultCallTimeout, "timeout for a single model call")
	f.Int("max-output-tokens", config.DefaultMaxOutputTokens, "maximum tokens per model response")

	root.AddCommand(a.toolsCommand())
	return root
}
