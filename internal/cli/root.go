package cli

import "github.com/spf13/cobra"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xml2openrpc",
		Short:         "Convert handler XML schemas into OpenRPC-style JSON documents",
		Version:       "1.0.0",
		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(NewConvertCmd(), NewValidateCmd())

	return root
}
