package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/textkeeper/internal/app"
	"github.com/dmitrijs2005/textkeeper/internal/config"
)

// annotationNoStore marks commands that never touch the store.
const annotationNoStore = "textkeeper/no-store"

// env is the state shared by every command of one invocation.
type env struct {
	cfg     *config.Config
	app     *app.App
	ownsApp bool
	sources config.Sources
}

// Option customises NewRootCommand.
type Option func(*env)

// WithApp runs commands against an already opened app instead of building
// one from the configuration. The caller keeps ownership.
func WithApp(a *app.App) Option {
	return func(e *env) { e.app = a }
}

// WithConfigSources overrides where configuration is read from.
func WithConfigSources(src config.Sources) Option {
	return func(e *env) { e.sources = src }
}

// NewRootCommand builds the textkeeper command tree. An app it opens is
// closed once the command has run.
func NewRootCommand(opts ...Option) *cobra.Command {
	e := &env{}
	for _, opt := range opts {
		opt(e)
	}
	root := newRoot(e)
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return e.close()
	}
	return root
}

func newRoot(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "textkeeper",
		Short:         "Versioned local text store with Markdown preview",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.prepare(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newNewCommand(e),
		newListCommand(e),
		newSearchCommand(e),
		newShowCommand(e),
		newHistoryCommand(e),
		newSaveCommand(e),
		newDraftCommand(e),
		newDiscardCommand(e),
		newVersionCommand(e),
		newRemoveCommand(e),
		newMoveCommand(e),
		newRenameCommand(e),
		newFolderCommand(e),
		newRenderCommand(e),
		newImportCommand(e),
		newExportCommand(e),
		newServeCommand(e),
		newShellCommand(e),
		newBuildInfoCommand(e),
	)
	return root
}

func (e *env) prepare(cmd *cobra.Command) error {
	src := e.sources
	src.Flags = cmd.Flags()

	cfg, err := config.LoadConfig(src)
	if err != nil {
		return err
	}
	e.cfg = cfg

	if e.app != nil || cmd.Annotations[annotationNoStore] != "" {
		return nil
	}
	a, err := app.NewApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	e.app, e.ownsApp = a, true
	return nil
}

func (e *env) close() error {
	if !e.ownsApp || e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app, e.ownsApp = nil, false
	return err
}

func (e *env) output() string {
	if e.cfg == nil {
		return config.OutputTable
	}
	return e.cfg.Output
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := &env{}
	root := newRoot(e)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// Main is the entry point used by cmd/textkeeper.
func Main() int {
	return Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
