package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctorctl",
		Short:         "Physician registry client: view, edit, delete, export, audit and users",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newDeletedCmd())
	cmd.AddCommand(newAlertsCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newPasswdCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}

func main() {
	Execute()
}
