package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListenersCommand creates the listeners command.
func NewListenersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listeners [event]",
		Short: "Show the listeners a manifest attaches",
		Long: `Without an argument, list every event the manifest binds and how many
listeners each has. With an event name, list that event's listeners in
the order they would run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := rootOpts.manifestPath()
			if err != nil {
				return err
			}
			s, err := newSession(path, rootOpts.Logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			registry := s.manager.Registry()

			if len(args) == 0 {
				for _, name := range registry.Names() {
					fmt.Fprintf(out, "%s (%d)\n", name, registry.Count(name))
				}
				return nil
			}

			i := 0
			for l := range s.manager.ListenersForEvent(args[0]) {
				i++
				if str, ok := l.(fmt.Stringer); ok {
					fmt.Fprintf(out, "%d. %s\n", i, str)
				} else {
					fmt.Fprintf(out, "%d. %T\n", i, l)
				}
			}
			if i == 0 {
				fmt.Fprintf(out, "no listeners for %q\n", args[0])
			}
			return nil
		},
	}
}
