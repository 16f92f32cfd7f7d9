package cli

import (
	"github.com/spf13/cobra"
)

// recordExts are the file extensions offered for record arguments.
var recordExts = []string{"json", "csv"}

// completeRecordFiles completes the single records argument of the group,
// layout, tree, browse and serve commands with JSON and CSV files.
func completeRecordFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return recordExts, cobra.ShellCompDirectiveFilterFileExt
}

func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for gridkit.

Completions cover the subcommands, layout modes for --mode, gridkit.toml
files for --config, and .json or .csv files for the records argument.

Bash:
  $ source <(gridkit completion bash)
  $ gridkit completion bash > /etc/bash_completion.d/gridkit

Zsh (with compinit enabled):
  $ gridkit completion zsh > "${fpath[1]}/_gridkit"

Fish:
  $ gridkit completion fish > ~/.config/fish/completions/gridkit.fish

PowerShell:
  PS> gridkit completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return root.GenBashCompletionV2(out, true)
			}
		},
	}
	return cmd
}
