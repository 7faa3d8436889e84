package cli

import (
	"fmt"

	"depot-helpdesk/internal/auth"

	"github.com/spf13/cobra"
)

var hashPinCmd = &cobra.Command{
	Use:   "hash-pin PIN",
	Short: "Print the bcrypt hash of a staff PIN",
	Long:  `Print the bcrypt hash to put in HELPDESK_STAFF_PIN_HASH when login is enabled.`,
	Args:  cobra.ExactArgs(1),
	// Hashing needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPin(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return err
	},
}

func init() {
	rootCmd.AddCommand(hashPinCmd)
}
