// sjp-runner configures and launches Swiss Judgment Prediction
// text-classification training runs.
package main

import (
	"fmt"
	"os"

	"github.com/legal-nlp/sjp-runner/cmd/sjp-runner/create"
	"github.com/legal-nlp/sjp-runner/cmd/sjp-runner/sweep"
	"github.com/legal-nlp/sjp-runner/cmd/sjp-runner/train"
	"github.com/legal-nlp/sjp-runner/cmd/sjp-runner/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:        "sjp-runner",
	Short:      "SJP training run launcher CLI",
	SuggestFor: []string{"sjprunner"},
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.AddCommand(
		create.NewCommand(),
		train.NewCommand(),
		sweep.NewCommand(),
		version.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sjp-runner failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
