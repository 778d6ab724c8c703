/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"shopdash/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopdash",
	Short: "Import TikTok Shop and Shopee exports and report sales, expenses and cashflow.",
	Long: `
**********************************************
*                SHOPDASH                    *
**********************************************

This CLI imports marketplace order exports (Excel, CSV), normalizes them into a local SQLite
database scoped per shop owner, tracks expenses, and reports summary figures and daily cashflow.

Supported input formats:
- Excel: .xlsx, .xlsm
- Legacy Excel: .xls
- CSV: .csv
`,
	Example: `
  # Create configuration file
  shopdash config create

  # Import a TikTok Shop export (two header rows) and a Shopee export
  shopdash import -i TikTok_orders_202603.xlsx -i Order.all.20260301_20260331.xlsx

  # Show the summary bar for last month
  shopdash summary --range last-month

  # Record an expense
  shopdash expense add --date 2026-03-05 --category ads --amount 500

  # Print the cashflow ledger for this month starting from a known balance
  shopdash reconcile --opening 12000

  # Export orders
  shopdash export --mode orders --output ./orders.xlsx

  # Start the local JSON API
  shopdash serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.shopdash.yaml, then ./.shopdash.yaml)")
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".shopdash" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".shopdash")
	}

	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults and SHOPDASH_* variables. Create one with: shopdash config create")
	}
}
