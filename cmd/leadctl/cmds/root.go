package cmds

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jordanlanch/leadgrid/cmd/leadctl/cmds/migrate"
	"github.com/jordanlanch/leadgrid/cmd/leadctl/cmds/seed"
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:           "leadctl",
	Short:         "Operate the leads database",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.AddCommand(migrate.Cmd)
	RootCmd.AddCommand(seed.Cmd)

	RootCmd.AddCommand(genBashCompletionCmd)
}

var genBashCompletionCmd = &cobra.Command{
	Use:   "bash",
	Short: "Generate bash completions file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RootCmd.GenBashCompletion(os.Stdout)
	},
}
