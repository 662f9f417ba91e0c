package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

func newFolderCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	var parent string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.storage().CreateFolder(cmd.Context(), strings.Join(args, " "), models.StringPtr(parent))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), e.output(), f, f.ID)
		},
	}
	create.Flags().StringVar(&parent, "parent", "", "parent folder id")

	cmd.AddCommand(
		create,
		&cobra.Command{
			Use:   "ls",
			Short: "List folders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				folders, err := e.storage().ListFolders(cmd.Context())
				if err != nil {
					return err
				}
				return printFolders(cmd.OutOrStdout(), e.output(), folders)
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a folder",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.storage().RenameFolder(cmd.Context(), args[0], strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a folder, moving its contents to the parent",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.storage().DeleteFolder(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}
