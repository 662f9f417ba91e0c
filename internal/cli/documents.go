package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/markdown"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

func (e *env) storage() store.Store {
	return e.app.Store()
}

// document loads a document and turns absence into ErrNotFound.
func (e *env) document(ctx context.Context, id string) (*models.Document, error) {
	doc, err := e.storage().GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return doc, nil
}

func newNewCommand(e *env) *cobra.Command {
	var file, folder string

	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a document with its first version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			body, err := readBody(cmd.InOrStdin(), "Enter text", file, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			res, err := e.storage().CreateDocument(cmd.Context(), title, body, models.StringPtr(folder))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), e.output(), res, res.DocumentID)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the body from a file (\"-\" for stdin)")
	cmd.Flags().StringVar(&folder, "folder", "", "folder id")
	return cmd
}

func newListCommand(e *env) *cobra.Command {
	var folder string
	var root bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List documents, most recently modified first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := e.storage().ListDocuments(cmd.Context())
			if err != nil {
				return err
			}
			if folder != "" || root {
				docs = filterFolder(docs, folder)
			}
			return printDocuments(cmd.OutOrStdout(), e.output(), docs)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "only documents in this folder")
	cmd.Flags().BoolVar(&root, "root", false, "only documents outside any folder")
	return cmd
}

func filterFolder(docs []models.Document, folder string) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if models.Deref(d.FolderID) == folder {
			out = append(out, d)
		}
	}
	return out
}

func newSearchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find documents whose title or saved text contains term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := e.storage().SearchDocuments(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printDocuments(cmd.OutOrStdout(), e.output(), docs)
		},
	}
}

func newShowCommand(e *env) *cobra.Command {
	var versionID string
	var draft, html bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the latest saved text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.document(ctx, args[0]); err != nil {
				return err
			}

			body, err := e.body(ctx, args[0], versionID, draft)
			if err != nil {
				return err
			}
			if html {
				body = markdown.Render(body)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
			return err
		},
	}
	cmd.Flags().StringVar(&versionID, "version", "", "print this version instead")
	cmd.Flags().BoolVar(&draft, "draft", false, "prefer the autosaved draft when there is one")
	cmd.Flags().BoolVar(&html, "html", false, "render Markdown to HTML")
	return cmd
}

func (e *env) body(ctx context.Context, id, versionID string, preferDraft bool) (string, error) {
	st := e.storage()
	if versionID != "" {
		v, err := st.GetVersion(ctx, id, versionID)
		if err != nil {
			return "", err
		}
		if v == nil {
			return "", fmt.Errorf("version %s: %w", versionID, common.ErrNotFound)
		}
		return v.Body, nil
	}
	if preferDraft {
		d, err := st.GetDraft(ctx, id)
		if err != nil {
			return "", err
		}
		if d != nil {
			return d.Body, nil
		}
	}
	v, err := st.GetLatestManualVersion(ctx, id)
	if err != nil || v == nil {
		return "", err
	}
	return v.Body, nil
}

func newRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a document with all its versions and draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.storage().DeleteDocument(cmd.Context(), args[0])
		},
	}
}

func newMoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <id> [folder-id]",
		Short: "Move a document into a folder, or to the root without one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var folder *string
			if len(args) == 2 {
				folder = models.StringPtr(args[1])
			}
			return e.storage().MoveDocument(cmd.Context(), args[0], folder)
		},
	}
}

func newRenameCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a document title without saving a version",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.storage().RenameDocument(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}
}
