package app

import (
	"github.com/spf13/cobra"

	"github.com/sudopush/sudopush/pkg/log"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "sudopush",
	Short: "Sudopush - Push files to remote hosts as root over plain SSH",
	Long: `Sudopush copies files, directories and generated content onto remote
hosts over SSH, landing them at destinations the login user cannot write
directly. Content travels to a staging location and is moved into place
with sudo, then ownership and permissions are fixed up in the same pass.

Hosts come from an inventory file (hosts.yaml) or from an ad hoc
--target user@host:port on the command line.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set log modes based on flags
		if verbose {
			log.SetVerbose(true)
		}
		if quiet {
			log.SetQuiet(true)
		}
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Enable quiet mode (minimal output)")
}

// Run adds all child commands to the root command and sets flags, this is the entry point called by main.go
func Run() error {
	return rootCmd.Execute()
}

var (
	inventoryPath string
	hostName      string
	target        string
	keyFile       string
	password      string

	owner string
	mode  string
)

func init() {
	// Global flags can be added here
	rootCmd.PersistentFlags().StringVar(&inventoryPath, "inventory", "",
		"Path to the inventory file (default: $SUDOPUSH_HOME/hosts.yaml)")
	rootCmd.PersistentFlags().StringVar(&hostName, "host", "", "Name of the inventory host to operate on")
	rootCmd.PersistentFlags().StringVar(&target, "target", "",
		`Ad hoc target in "user@host:port" form, bypassing the inventory. Takes precedence over --host`)
	rootCmd.PersistentFlags().StringVar(&keyFile, "key", "", "Path to the SSH private key (e.g. ~/.ssh/id_ed25519)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "SSH password")

	// Add subcommands
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pushDirCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(versionCmd)
}

// addAttrFlags binds the ownership flags on commands that land content
// on the remote host.
func addAttrFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&owner, "owner", "", `Owner applied to the result (e.g. "deploy:deploy", empty to leave as is)`)
	cmd.Flags().StringVar(&mode, "mode", "", `Permission mode applied to the result (e.g. "0644", empty to leave as is)`)
}
