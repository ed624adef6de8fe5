// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "steelhall",
	Short: "Steelhall - back office for second-hand industrial buildings",
	Long: `Steelhall runs the public site and admin API for a company trading
second-hand warehouses, halls and sheds, and manages its listings, leads,
testimonials and webshop products from the command line.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
