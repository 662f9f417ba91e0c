package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/textkeeper/internal/store"
)

func newHistoryCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "List the saved versions of a document, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := e.document(ctx, args[0])
			if err != nil {
				return err
			}
			versions, err := e.storage().ListVersions(ctx, doc.ID)
			if err != nil {
				return err
			}
			return printVersions(cmd.OutOrStdout(), e.output(), versions, doc.LastSavedVersionID)
		},
	}
}

func newSaveCommand(e *env) *cobra.Command {
	var file, title, note string

	cmd := &cobra.Command{
		Use:   "save <id>",
		Short: "Save new text as a manual version and drop the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := e.document(ctx, args[0])
			if err != nil {
				return err
			}
			body, err := readBody(cmd.InOrStdin(), "Enter text", file, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if title == "" {
				title = doc.Title
			}

			res, err := e.storage().SaveManualVersion(ctx, doc.ID, title, body, store.WithNote(note))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), e.output(), res, res.VersionID)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the body from a file (\"-\" for stdin)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title (defaults to the current one)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "note attached to the version")
	return cmd
}

func newDraftCommand(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "draft <id>",
		Short: "Write the autosave draft of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := e.document(ctx, args[0])
			if err != nil {
				return err
			}
			body, err := readBody(cmd.InOrStdin(), "Enter text", file, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return e.storage().UpsertDraft(ctx, doc.ID, body, doc.LastSavedVersionID)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the body from a file (\"-\" for stdin)")
	return cmd
}

func newDiscardCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <id>",
		Short: "Drop the draft of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.storage().DiscardDraft(cmd.Context(), args[0])
		},
	}
}

func newVersionCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Manage saved versions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <document-id> <version-id>",
		Short: "Delete one saved version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.storage().DeleteManualVersion(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted version %s\n", args[1])
			return err
		},
	})
	return cmd
}
