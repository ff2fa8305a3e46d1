// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zxc",
	Short: "zxc checks and compiles zx programs",
	Long: `zxc is the compiler for the zx language. It parses zx source files,
resolves every name to its declaration, checks types, and lowers checked
programs to LLVM IR.

Getting started:
  zxc check main.zx            Report errors and warnings
  zxc check ./...              Check every .zx file below the current directory
  zxc symbols main.zx          Show the symbol table as a tree
  zxc emit main.zx -o main.ll  Write LLVM IR
  zxc repl                     Declare and evaluate zx interactively
  zxc explain TypeError        Describe a diagnostic kind or lint check

Projects:
  A directory containing a zx.toml manifest is a project. Run check or
  emit without arguments anywhere inside it to use the manifest's entry
  file and settings.

Configuration:
  Flags may also be set in $HOME/.zxc.yaml or through ZXC_ environment
  variables, e.g. ZXC_COLOR=never.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zxc.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().String("log-level", "warn",
		"Compiler log level: trace, debug, info, warn or error.")
	rootCmd.PersistentFlags().Bool("warnings-as-errors", false,
		"Treat warnings as errors.")

	for _, name := range []string{"color", "log-level", "warnings-as-errors"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		// Search config in home directory with name ".zxc" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".zxc")
	}

	viper.SetEnvPrefix("zxc")
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		logger().WithField("config", viper.ConfigFileUsed()).Debug("using config file")
	}
}

var cmdLog *logrus.Logger

// logger returns the command logger, configured from the log-level setting
// on first use.
func logger() *logrus.Logger {
	if cmdLog != nil {
		return cmdLog
	}
	cmdLog = logrus.New()
	cmdLog.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.WarnLevel
		cmdLog.WithError(err).Warn("invalid log level")
	}
	cmdLog.SetLevel(level)
	return cmdLog
}
