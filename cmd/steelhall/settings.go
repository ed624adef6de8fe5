package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/steelhall/steelhall/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change the site settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the site settings",
	Run: func(cmd *cobra.Command, args []string) {
		p := settings.NewProvider(settings.RemoteStore{Client: mustClient(true)})
		s, err := p.Load(cmd.Context())
		if err != nil {
			fail(err)
		}
		printJSON(s)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set field=value ...",
	Short: "Change site settings",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := settings.NewProvider(settings.RemoteStore{Client: mustClient(true)})
		s, err := p.Load(cmd.Context())
		if err != nil {
			fail(err)
		}
		if err := applySets(&s, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := p.Save(cmd.Context(), s); err != nil {
			fail(err)
		}
		fmt.Println("Settings saved")
	},
}

var settingsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the site settings to a YAML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		remote := settings.NewProvider(settings.RemoteStore{Client: mustClient(true)})
		s, err := remote.Load(cmd.Context())
		if err != nil {
			fail(err)
		}
		if _, err := settings.NewProvider(settings.FileStore{Path: args[0]}).Save(cmd.Context(), s); err != nil {
			fail(err)
		}
		fmt.Printf("Settings written to %s\n", args[0])
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Save the site settings from a YAML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := settings.NewProvider(settings.FileStore{Path: args[0]}).Load(cmd.Context())
		if err != nil {
			fail(err)
		}
		remote := settings.NewProvider(settings.RemoteStore{Client: mustClient(true)})
		if _, err := remote.Save(cmd.Context(), s); err != nil {
			fail(err)
		}
		fmt.Printf("Settings imported from %s\n", args[0])
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsExportCmd)
	settingsCmd.AddCommand(settingsImportCmd)
}
