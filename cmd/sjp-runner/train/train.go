// Package train implements "sjp-runner train" command.
package train

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
	language  string
	seed      int

	checkpoint   string
	evaluateOnly bool
	debug        bool
	dryRun       bool
	enablePrompt bool
)

// NewCommand implements "sjp-runner train" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Configure and launch one training run",
		Long:  "Configuration values are overwritten by environment variables, then by flags.",
		Run:   trainFunc,
	}
	cmd.PersistentFlags().StringVarP(&path, "path", "p", "", "sjp-runner configuration file path")
	cmd.PersistentFlags().StringVarP(&modelName, "model-name", "m", "", "pretrained model identifier")
	cmd.PersistentFlags().StringVarP(&archType, "architecture-type", "t", "", "one of 'standard', 'long', 'longformer', 'hierarchical'")
	cmd.PersistentFlags().StringVarP(&language, "language", "l", "", "one of 'de', 'fr', 'it'")
	cmd.PersistentFlags().IntVarP(&seed, "seed", "s", 0, "random seed")
	cmd.PersistentFlags().StringVar(&checkpoint, "checkpoint", "", "checkpoint path to resume from")
	cmd.PersistentFlags().BoolVar(&evaluateOnly, "evaluate-only", false, "'true' to skip training")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "'true' to run a capped debug iteration under the scratch base directory")
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "'true' to print the trainer command instead of executing it")
	cmd.PersistentFlags().BoolVarP(&enablePrompt, "enable-prompt", "e", false, "'true' to enable prompt mode")
	return cmd
}

// loadConfig reads the configuration file if any, then applies environment
// variable and flag overrides.
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

	// flags win over file and environment
	if modelName != "" {
		cfg.ModelName = modelName
	}
	if archType != "" {
		cfg.ArchitectureType = runconfig.ArchitectureType(archType)
	}
	if language != "" {
		cfg.Language = runconfig.Language(language)
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if checkpoint != "" {
		cfg.Checkpoint = checkpoint
	}
	if evaluateOnly {
		cfg.EvaluateOnly = true
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

func trainFunc(cmd *cobra.Command, args []string) {
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
	fmt.Fprintf(logWriter, "launching run %q\n", cfg.RunName)

	stopc := make(chan struct{})
	rn := runner.New(runner.Config{
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
		rn.Stop()
	}()

	if err = rn.Run(); err != nil {
		fmt.Printf("\n*********************************\n")
		fmt.Printf("'sjp-runner train' fail %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n*********************************\n")
	fmt.Printf("'sjp-runner train' success\n")
}
