// Package create implements "sjp-runner create" commands.
package create

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/legal-nlp/sjp-runner/pkg/randutil"
	"github.com/legal-nlp/sjp-runner/runconfig"
	"github.com/spf13/cobra"
)

var (
	path     string
	autoPath bool
)

// NewCommand implements "sjp-runner create" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:        "create",
		Short:      "SJP runner create commands",
		SuggestFor: []string{"creat"},
	}
	cmd.PersistentFlags().StringVarP(&path, "path", "p", "", "sjp-runner configuration file path")
	cmd.PersistentFlags().BoolVarP(&autoPath, "auto-path", "a", false, "'true' to auto-generate path for create config, overwrites existing --path value")
	cmd.AddCommand(
		newCreateConfig(),
	)
	return cmd
}

func newCreateConfig() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Writes an sjp-runner configuration with default values",
		Long:  "Configuration values are overwritten by environment variables.",
		Run:   createConfigFunc,
	}
}

func createConfigFunc(cmd *cobra.Command, args []string) {
	if autoPath {
		path = filepath.Join(os.TempDir(), randutil.String(15)+".yaml")
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "'--path' flag is not specified")
		os.Exit(1)
	}
	cfg := runconfig.NewDefault()
	cfg.ConfigPath = path
	if err := cfg.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write configuration %q (%v)\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("\n*********************************\n")
	fmt.Printf("overwriting config file from environment variables...\n")
	err := cfg.UpdateFromEnvs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from environment variables: %v\n", err)
		os.Exit(1)
	}

	if cfg.ModelName == "" {
		// bare template; derived fields are filled in once the required
		// request fields are set and "train" or "sweep" validates the file
		if err = cfg.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write configuration %q (%v)\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote a bare template; set model-name, architecture-type, language and seed before running\n")
	} else if err = cfg.ValidateAndSetDefaults(); err != nil {
		fmt.Fprintf(os.Stderr, "'sjp-runner create config' fail %v\n", err)
		os.Exit(1)
	}

	txt, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read configuration %q (%v)\n", path, err)
		os.Exit(1)
	}
	println()
	fmt.Println(string(txt))
	println()

	fmt.Printf("\n*********************************\n")
	fmt.Printf("'sjp-runner create config' success\n")
}
