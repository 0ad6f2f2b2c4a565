package reviewer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ChamsBouzaiene/reviewer/internal/config"
	"github.com/ChamsBouzaiene/reviewer/internal/engine"
	"github.com/ChamsBouzaiene/reviewer/internal/project"
	"github.com/ChamsBouzaiene/reviewer/internal/prompts"
	"github.com/ChamsBouzaiene/reviewer/internal/tools"
	"github.com/ChamsBouzaiene/reviewer/internal/tools/filesystem"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Reviewer is a review-and-fix session bound to one directory.
// It wraps the generic agent engine with the filesystem tools and review prompt.
type Reviewer struct {
	*engine.Agent
	dir  string
	task string
}

type settings struct {
	fs          filesystem.FileSystem
	retryConfig *engine.RetryConfig
	logger      zerolog.Logger
	extraHooks  engine.Hooks
}

// Option configures a Reviewer.
type Option func(*settings)

// WithFileSystem replaces the OS filesystem the tools operate on.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(s *settings) { s.fs = fs }
}

// WithRetryConfig overrides the gateway retry policy.
func WithRetryConfig(rc *engine.RetryConfig) Option {
	return func(s *settings) { s.retryConfig = rc }
}

// WithLogger sets the logger for progress events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHooks adds hooks that run after the logger hook.
func WithHooks(hooks ...engine.Hook) Option {
	return func(s *settings) { s.extraHooks = append(s.extraHooks, hooks...) }
}

// New prepares a session for dir. The gateway client is injected by the caller;
// cfg supplies the model, budgets and dry-run switch.
func New(ctx context.Context, dir string, llm engine.LLMClient, cfg config.Config, opts ...Option) (*Reviewer, error) {
	s := settings{
		fs:     filesystem.NewOSFileSystem(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(&s)
	}

	root, err := resolveDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	projectCfg, err := project.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	env := filesystem.Env{FS: s.fs, Scan: projectCfg.ScanOptions(root)}
	registry, err := tools.NewToolRegistry(env, tools.ToolSet{ReadOnly: cfg.DryRun})
	if err != nil {
		return nil, fmt.Errorf("failed to create tool registry: %w", err)
	}

	task, err := prompts.TaskMessage(prompts.DefaultRegistry(), root)
	if err != nil {
		return nil, fmt.Errorf("failed to render task message: %w", err)
	}

	builder := engine.NewAgentBuilder().
		WithLLM(llm).
		WithModel(cfg.Model).
		WithMaxSteps(cfg.MaxSteps).
		WithMaxOutputTokens(cfg.MaxOutputTokens).
		WithCallTimeout(cfg.CallTimeout).
		WithRetryConfig(s.retryConfig).
		WithToolRegistry(registry).
		WithLogger(s.logger)

	builder, err = builder.WithPrompt(prompts.ReviewPromptID, prompts.PromptV1)
	if err != nil {
		return nil, fmt.Errorf("failed to configure review prompt: %w", err)
	}

	if rules, err := project.LoadRules(root); err != nil {
		s.logger.Warn().Err(err).Msg("ignoring project rules")
	} else if rules != "" {
		builder = builder.WithCustomRules(rules)
	}

	hooks := engine.Hooks{engine.LoggerHook{L: s.logger}}
	hooks = append(hooks, s.extraHooks...)
	builder = builder.WithHooks(hooks)

	agent, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build reviewer agent: %w", err)
	}

	return &Reviewer{Agent: agent, dir: root, task: task}, nil
}

// Review runs the session to one of its three outcomes.
func (r *Reviewer) Review(ctx context.Context) (engine.Outcome, error) {
	return r.Agent.Run(ctx, r.task)
}

// Dir is the absolute directory under review.
func (r *Reviewer) Dir() string { return r.dir }

// Task is the opening message sent to the model.
func (r *Reviewer) Task() string { return r.task }

func resolveDir(fs filesystem.FileSystem, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := fs.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot review %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cannot review %s: not a directory", dir)
	}
	return abs, nil
}
