package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fedsync/fedsync/fed/fom"
	"github.com/fedsync/fedsync/fed/registry"
)

// validateCmd checks a federation description without running it: the file
// must parse, every federate configuration must freeze cleanly, and every
// mapped variable path must bind against the store the runner would build.
var validateCmd = &cobra.Command{
	Use:   "validate <federation.yaml>",
	Short: "Validate a federation description file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configs, err := fom.LoadFederationFile(args[0])
		if err != nil {
			color.Red("Error: %v", err)
			os.Exit(1)
		}
		failed := false
		for _, fc := range configs {
			store, err := registry.NewStoreForConfig(fc)
			if err != nil {
				color.Red("Error: federate %q: %v", fc.FederateName, err)
				failed = true
				continue
			}
			reg := registry.NewRegistry(fc.FederateName)
			if err := reg.Bind(fc, store); err != nil {
				color.Red("Error: %v", err)
				failed = true
				continue
			}
			color.Green("OK: federate %q (%d objects, %d interactions)",
				fc.FederateName, len(fc.Objects), len(fc.Interactions))
		}
		if failed {
			os.Exit(1)
		}
	},
}
