// Package sweep implements "sjp-runner sweep" command.
package sweep

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/legal-nlp/sjp-runner/pkg/fileutil"
	"github.com/legal-nlp/sjp-runner/pkg/logutil"
	"github.com/legal-nlp/sjp-runner/runconfig"
	"github.com/legal-nlp/sjp-runner/runner"
	"github.com/spf13/cobra"
)

var (
	path string

	modelName string
	archType  string

	languages         []string
	seeds             []int
	continueOnFailure bool

	debug        bool
	dryRun       bool
	enablePrompt bool
)

// NewCommand implements "sjp-runner sweep" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Launch one training run per language and seed combination",
		Long:  "Configuration values are overwritten by environment variables, then by flags.",
		Run:   sweepFunc,
	}
	cmd.PersistentFlags().StringVarP(&path, "path", "p", "", "sjp-runner configuration file path")
	cmd.PersistentFlags().StringVarP(&modelName, "model-name", "m", "", "pretrained model identifier")
	cmd.PersistentFlags().StringVarP(&archType, "architecture-type", "t", "", "one of 'standard', 'long', 'longformer', 'hierarchical'")
	cmd.PersistentFlags().StringSliceVarP(&languages, "languages", "l", nil, "languages to sweep over (empty to sweep all)")
	cmd.PersistentFlags().IntSliceVarP(&seeds, "seeds", "s", nil, "random seeds to sweep over")
	cmd.PersistentFlags().BoolVar(&continueOnFailure, "continue-on-failure", false, "'true' to keep sweeping after a failed run")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "'true' to run capped debug iterations under the scratch base directory")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "'true' to print the trainer commands instead of executing them")
	cmd.PersistentFlags().BoolVarP(&enablePrompt, "enable-prompt", "e", false, "'true' to enable prompt mode")
	return cmd
}

func loadConfig() (*runconfig.Config, error) {
	var cfg *runconfig.Config
	var err error
	if path != "" && fileutil.Exist(path) {
		cfg, err = runconfig.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration %q (%v)", path, err)
		}
	} else {
		cfg = runconfig.NewDefault()
		cfg.ConfigPath = path
	}

	if err = cfg.UpdateFromEnvs(); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment variables: %v", err)
	}

	if modelName != "" {
		cfg.ModelName = modelName
	}
	if archType != "" {
		cfg.ArchitectureType = runconfig.ArchitectureType(archType)
	}
	if len(languages) > 0 {
		cfg.SweepLanguages = languages
	}
	if len(seeds) > 0 {
		cfg.SweepSeeds = seeds
	}
	if continueOnFailure {
		cfg.SweepContinueOnFailure = true
	}
	if debug {
		cfg.Debug = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if enablePrompt {
		cfg.Prompt = true
	}

	if err = cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sweepFunc(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	lg, logWriter, logFile, err := logutil.NewWithStderrWriter(cfg.LogLevel, cfg.LogOutputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	fmt.Fprint(logWriter, cfg.Colorize("\n\n[yellow]*********************************\n"))
	fmt.Fprintf(logWriter, "sweeping %q over languages %v and seeds %v\n", cfg.ModelID, cfg.SweepLanguages, cfg.SweepSeeds)

	stopc := make(chan struct{})
	sw := runner.NewSweep(runner.Config{
		Logger:    lg,
		LogWriter: logWriter,
		Stopc:     stopc,
		Run:       cfg,
	})

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigc
		fmt.Fprintf(logWriter, "received %v; stopping\n", sig)
		close(stopc)
	}()

	if err = sw.Run(); err != nil {
		fmt.Printf("\n*********************************\n")
		fmt.Printf("'sjp-runner sweep' fail %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n*********************************\n")
	fmt.Printf("'sjp-runner sweep' success\n")
}
