package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/textkeeper/internal/markdown"
	"github.com/dmitrijs2005/textkeeper/internal/session"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

// shell is the execIface implementation over an autosave session.
type shell struct {
	session *session.Session
	store   store.Store
	out     io.Writer
	output  string
}

func (s *shell) status() string {
	if v := s.session.Viewing(); v != nil {
		return fmt.Sprintf("(%s %s)", s.session.State(), v.ID)
	}
	return fmt.Sprintf("(%s)", s.session.State())
}

// readOnly is checked before prompting so a rejected edit does not swallow
// the following commands as text.
func (s *shell) readOnly() error {
	if s.session.State() == session.StateViewingHistory {
		return session.ErrReadOnly
	}
	return nil
}

func (s *shell) Edit(_ context.Context, r *bufio.Reader) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	text, err := GetMultiline(r, "Enter the new text", s.out)
	if err != nil {
		return err
	}
	return s.session.Edit(text)
}

func (s *shell) Append(_ context.Context, r *bufio.Reader) error {
	if err := s.readOnly(); err != nil {
		return err
	}
	text, err := GetMultiline(r, "Enter text to append", s.out)
	if err != nil {
		return err
	}
	if buf := s.session.Buffer(); buf != "" && text != "" {
		text = "\n" + text
	}
	return s.session.Append(text)
}

func (s *shell) Status(context.Context) error {
	fmt.Fprintf(s.out, "document: %s\ntitle: %s\nstate: %s\nunsaved edits: %t\n",
		s.session.DocumentID(), s.session.Title(), s.session.State(), s.session.Dirty())
	return nil
}

// text is the viewed version in the history view and the buffer otherwise.
func (s *shell) text() string {
	if v := s.session.Viewing(); v != nil {
		return v.Body
	}
	return s.session.Buffer()
}

func (s *shell) Show(context.Context) error {
	_, err := fmt.Fprintln(s.out, s.text())
	return err
}

func (s *shell) Preview(context.Context) error {
	_, err := fmt.Fprintln(s.out, markdown.Render(s.text()))
	return err
}

func (s *shell) Save(ctx context.Context, title string) error {
	res, err := s.session.Save(ctx, title)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "saved version %s\n", res.VersionID)
	return err
}

func (s *shell) Discard(ctx context.Context) error {
	return s.session.Discard(ctx)
}

func (s *shell) History(ctx context.Context) error {
	versions, err := s.store.ListVersions(ctx, s.session.DocumentID())
	if err != nil {
		return err
	}
	return printVersions(s.out, s.output, versions, s.session.BaseVersionID())
}

func (s *shell) View(ctx context.Context, versionID string) error {
	v, err := s.session.ViewVersion(ctx, versionID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, v.Body)
	return err
}

func (s *shell) Back(context.Context) error {
	return s.session.ExitHistory()
}

func (s *shell) Restore(context.Context) error {
	return s.session.RestoreViewed()
}

func newShellCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell <id>",
		Short: "Edit a document interactively with autosave",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sess := e.app.NewSession(args[0], session.OnError(func(err error) {
				fmt.Fprintln(cmd.ErrOrStderr(), "autosave failed:", err)
			}))
			if err := sess.Open(ctx); err != nil {
				return err
			}
			defer sess.Close()

			sh := &shell{session: sess, store: e.storage(), out: out, output: e.output()}
			fmt.Fprintf(out, "Editing %q (type 'help' for commands)\n", sess.Title())
			runREPL(ctx, sh, sh.status, bufio.NewReader(cmd.InOrStdin()), out)
			return nil
		},
	}
}
