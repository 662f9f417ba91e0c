package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The session-backed shell satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	Edit(ctx context.Context, r *bufio.Reader) error
	Append(ctx context.Context, r *bufio.Reader) error
	Status(ctx context.Context) error
	Show(ctx context.Context) error
	Preview(ctx context.Context) error
	Save(ctx context.Context, title string) error
	Discard(ctx context.Context) error
	History(ctx context.Context) error
	View(ctx context.Context, versionID string) error
	Back(ctx context.Context) error
	Restore(ctx context.Context) error
}

const replHelp = `Available commands:
  edit            replace the text (finish with a line containing only ".")
  append          add lines to the end of the text
  status          show the editing state
  show            print the current text
  preview         print the current text rendered to HTML
  save [title]    save a manual version
  discard         drop the draft and reload the last saved version
  history         list saved versions
  view <id>       display a saved version read-only
  back            leave the version view
  restore         copy the viewed version into the editor
  exit | quit     leave the shell`

// runREPL starts a read–eval–print loop over one document.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Commands that take text read it from the
// same reader. Errors returned by handlers are printed and the loop goes on.
// The loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	report := func(err error) {
		if err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}

	for {
		fmt.Fprintf(w, "tk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, replHelp)
		case "edit":
			report(a.Edit(ctx, reader))
		case "append":
			report(a.Append(ctx, reader))
		case "status":
			report(a.Status(ctx))
		case "show":
			report(a.Show(ctx))
		case "preview":
			report(a.Preview(ctx))
		case "save":
			report(a.Save(ctx, strings.Join(args, " ")))
		case "discard":
			report(a.Discard(ctx))
		case "history":
			report(a.History(ctx))
		case "view":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: view <version-id>")
				continue
			}
			report(a.View(ctx, args[0]))
		case "back":
			report(a.Back(ctx))
		case "restore":
			report(a.Restore(ctx))
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
