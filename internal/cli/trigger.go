package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// NewTriggerCommand creates the trigger command.
func NewTriggerCommand(rootOpts *RootOptions) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "trigger <event>",
		Short: "Dispatch one event through the manifest's listeners",
		Long: `Dispatch one event through the listeners declared in the manifest.

Parameters are given as key=value pairs; values are parsed as YAML
scalars. The final state and parameters of the event are printed.
A failing listener makes the command exit non-zero.`,
		Example: `  soochak trigger user.created -m listeners.toml -p user=ana -p admin=true`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrigger(cmd, rootOpts, args[0], params)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "event parameter as key=value (repeatable)")
	return cmd
}

func runTrigger(cmd *cobra.Command, opts *RootOptions, name string, pairs []string) error {
	if name == "" {
		return errors.New("event name must not be empty")
	}
	path, err := opts.manifestPath()
	if err != nil {
		return err
	}
	params, err := parseParams(pairs)
	if err != nil {
		return err
	}

	s, err := newSession(path, opts.Logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.close()

	ev, result, err := s.trigger(cmd.Context(), name, params)
	writeResult(cmd.OutOrStdout(), ev, result)
	return err
}
