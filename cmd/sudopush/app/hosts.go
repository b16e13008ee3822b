package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List the hosts in the inventory",
	Long:  `List the hosts in the inventory with their connection details.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := loadInventory()
		if err != nil {
			return err
		}

		if len(inv.Hosts) == 0 {
			fmt.Println("No hosts configured")
			return nil
		}

		for _, h := range inv.Hosts {
			auth := "password"
			if h.KeyFile != "" {
				auth = h.KeyFile
			}
			fmt.Printf("%-20s %s@%s:%-6s %s\n", h.Name, h.User, h.Address, h.Port, auth)
		}
		if inv.Defaults.Owner != "" || inv.Defaults.Mode != "" {
			fmt.Printf("\ndefaults: owner=%q mode=%q\n", inv.Defaults.Owner, inv.Defaults.Mode)
		}
		return nil
	},
}
