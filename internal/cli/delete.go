package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteOwner string

var deleteCmd = &cobra.Command{
	Use:   "delete <doc-id>",
	Short: "Remove a source from the index",
	Long: `Remove the record with doc-id owned by the given user. Deleting an id
that does not exist, or belongs to another user, is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVarP(&deleteOwner, "user", "u", "", "owner of the source (required)")
	deleteCmd.MarkFlagRequired("user")
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := openService(GetConfig(), GetRootDir(), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Delete(args[0], deleteOwner); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
