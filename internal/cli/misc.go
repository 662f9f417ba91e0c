package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/textkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/textkeeper/internal/markdown"
	"github.com/dmitrijs2005/textkeeper/internal/models"
)

func newRenderCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "render [file]",
		Short:       "Render Markdown from a file or stdin to HTML",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationNoStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			file := "-"
			if len(args) == 1 {
				file = args[0]
			}
			text, err := readBody(cmd.InOrStdin(), "Enter Markdown", file, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markdown.Render(text))
			return err
		},
	}
}

func newImportCommand(e *env) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Create documents from Markdown or text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.app.Pending().Push(args...)
			results, importErr := e.app.Importer().ImportPending(cmd.Context(), e.app.Pending(), models.StringPtr(folder))

			if done, err := printStructured(cmd.OutOrStdout(), e.output(), results); done {
				return errors.Join(importErr, err)
			}
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.DocumentID)
			}
			return importErr
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "folder id for the new documents")
	return cmd
}

func newExportCommand(e *env) *cobra.Command {
	var draft bool

	cmd := &cobra.Command{
		Use:   "export <id> <path>",
		Short: "Write the latest saved text of a document to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.app.Importer().Export(cmd.Context(), args[0], args[1], draft)
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "export the draft when there is one")
	return cmd
}

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "preview server on http://%s\n", e.app.Config().PreviewAddr)
			return e.app.Serve(cmd.Context())
		},
	}
}

func newBuildInfoCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "buildinfo",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := printStructured(cmd.OutOrStdout(), e.output(), buildinfo.Get()); done {
				return err
			}
			buildinfo.PrintBuildData(cmd.OutOrStdout())
			return nil
		},
	}
}
