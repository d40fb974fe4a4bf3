package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/user/debugpanel/internal/entity"
)

// NewRootCommand builds the command tree. Every operation is available as a
// subcommand (with its short alias) and, for older scripts, as a flag on
// the root command: "debugpanel --crawl -n host:8081 AUID...".
func NewRootCommand(app *App) *cobra.Command {
	o := &options{}
	legacy := make(map[string]*bool)

	root := &cobra.Command{
		Use:   "debugpanel [--operation] [flags] [AUID...]",
		Short: "Send DebugPanel actions to LOCKSS nodes in parallel",
		Long: `debugpanel sends one DebugPanel action to every node, or to every
(node, AUID) pair, through a bounded pool of workers, and prints a table of
outcomes in the order the nodes and AUIDs were given.

Examples:
  # Reload the configuration of two nodes
  debugpanel reload-config -n node1:8081 -n node2:8081

  # Crawl the AUIDs listed in a file on every node listed in a file
  debugpanel crawl -N nodes.txt -A auids.txt

  # Deep-crawl with depth 5, four requests at a time
  debugpanel dc -N nodes.txt -a 'org|lockss|...' --depth 5 --pool-size 4`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected []string
			for name, set := range legacy {
				if *set {
					selected = append(selected, name)
				}
			}
			sort.Strings(selected)
			op, err := entity.SelectOperation(selected...)
			if err != nil {
				return err
			}
			return run(cmd, app, o, op, args)
		},
	}
	o.register(root.PersistentFlags())

	for _, op := range entity.Operations() {
		set := new(bool)
		legacy[op.Name] = set
		root.Flags().BoolVar(set, op.Name, false, op.Description)
		root.AddCommand(newOperationCommand(app, o, op))
	}

	root.AddCommand(
		newJobWorkerCommand(app, o),
		newCopyrightCommand(),
		newLicenseCommand(),
		newVersionCommand(),
	)
	return root
}

func newOperationCommand(app *App, o *options, op entity.Operation) *cobra.Command {
	cmd := &cobra.Command{
		Use:     op.Name,
		Aliases: []string{op.Alias},
		Short:   op.Description,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, o, op, args)
		},
	}
	if op.Scope == entity.UnitScope {
		cmd.Use = op.Name + " [AUID...]"
		cmd.Args = cobra.ArbitraryArgs
	}
	return cmd
}
