// Package runner configures and launches the external text-classification
// trainer ("run_tc.py") with a fully derived flag set.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
	"github.com/manifoldco/promptui"
	"github.com/mholt/archiver/v3"
	"go.uber.org/zap"
	"k8s.io/utils/exec"

	"github.com/legal-nlp/sjp-runner/pkg/fileutil"
	"github.com/legal-nlp/sjp-runner/runconfig"
)

// Config defines runner parameters.
type Config struct {
	Logger    *zap.Logger   `json:"-"`
	LogWriter io.Writer     `json:"-"`
	Stopc     chan struct{} `json:"-"`

	Run *runconfig.Config `json:"run"`
}

// Runner launches one trainer process. It does not supervise the trainer
// beyond its exit status; training internals are the trainer's business.
type Runner struct {
	cfg Config

	trainerLogFile *os.File

	donec          chan struct{}
	donecCloseOnce *sync.Once

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// New creates a runner for a validated run configuration.
func New(cfg Config) *Runner {
	return &Runner{
		cfg: cfg,

		donec:          make(chan struct{}),
		donecCloseOnce: new(sync.Once),
	}
}

// Name returns the run name.
func (rn *Runner) Name() string { return rn.cfg.Run.RunName }

// BuildArgs assembles the ordered trainer invocation from the derived
// configuration.
func (rn *Runner) BuildArgs() (args []string) {
	cfg := rn.cfg.Run
	args = []string{
		cfg.PythonBinary,
		cfg.TrainerPath,
		"--problem_type", "single_label_classification",
		"--model_name_or_path", cfg.ModelPath,
		"--run_name", cfg.RunName,
		"--output_dir", cfg.OutputDir,
		"--long_input_bert_type", string(cfg.ArchitectureType),
		"--learning_rate", cfg.LearningRate,
		"--seed", strconv.Itoa(cfg.Seed),
		"--language", string(cfg.Language),
	}
	if !cfg.EvaluateOnly {
		args = append(args, "--do_train")
	}
	// evaluation and prediction run regardless of mode
	args = append(args, "--do_eval", "--do_predict")
	if !cfg.Debug {
		args = append(args, "--fp16")
	}
	args = append(args,
		"--pad_to_max_length",
		"--logging_strategy", "epoch",
		"--evaluation_strategy", "epoch",
		"--save_strategy", "epoch",
		"--gradient_accumulation_steps", strconv.Itoa(cfg.AccumulationSteps),
		"--per_device_train_batch_size", strconv.Itoa(cfg.BatchSize),
		"--per_device_eval_batch_size", strconv.Itoa(cfg.BatchSize),
		"--max_seq_length", strconv.Itoa(cfg.MaxSeqLength),
		"--num_train_epochs", strconv.Itoa(cfg.Epochs),
		"--load_best_model_at_end",
		"--metric_for_best_model", cfg.MetricForBestModel,
		"--save_total_limit", strconv.Itoa(cfg.SaveTotalLimit),
	)
	if cfg.Debug {
		args = append(args,
			"--report_to", "none",
			"--max_train_samples", strconv.Itoa(cfg.DebugSamples),
			"--max_eval_samples", strconv.Itoa(cfg.DebugSamples),
			"--max_predict_samples", strconv.Itoa(cfg.DebugSamples),
			"--overwrite_output_dir",
		)
	} else {
		args = append(args, "--report_to", "wandb")
	}
	return args
}

// CommandString returns the shell-quoted trainer command.
func (rn *Runner) CommandString() string {
	return shellquote.Join(rn.BuildArgs()...)
}

// preflight verifies the data layout the trainer hard-codes.
func (rn *Runner) preflight() error {
	cfg := rn.cfg.Run
	required := []string{
		filepath.Join(cfg.DataDir, "labels.json"),
		filepath.Join(cfg.DataDir, "val.csv"),
		filepath.Join(cfg.DataDir, "test.csv"),
	}
	if !cfg.EvaluateOnly {
		required = append(required, filepath.Join(cfg.DataDir, "train.csv"))
	}
	for _, p := range required {
		if !fileutil.Exist(p) {
			return fmt.Errorf("data file %q does not exist", p)
		}
	}
	return nil
}

// Run launches the trainer and waits for it to exit.
// The trainer's exit status is reported, never interpreted.
func (rn *Runner) Run() (err error) {
	cfg := rn.cfg.Run

	if cfg.DryRun {
		fmt.Fprintf(rn.cfg.LogWriter, "\n%s\n", rn.CommandString())
		return nil
	}

	if ok := rn.runPrompt("launch trainer"); !ok {
		return errors.New("cancelled")
	}

	if err = rn.preflight(); err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(cfg.OutputDir), 0700); err != nil {
		return err
	}
	if err = fileutil.IsDirWriteable(filepath.Dir(cfg.OutputDir)); err != nil {
		return err
	}

	rn.trainerLogFile, err = os.OpenFile(cfg.TrainerLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer func() {
		rn.trainerLogFile.Sync()
		rn.trainerLogFile.Close()
	}()

	rn.rootCtx, rn.rootCancel = context.WithTimeout(context.Background(), cfg.RunTimeout)
	checkDonec := rn.streamTrainerLogs()

	args := rn.BuildArgs()
	rn.cfg.Logger.Info("launching trainer",
		zap.String("run-name", cfg.RunName),
		zap.String("output-dir", cfg.OutputDir),
		zap.String("command", shellquote.Join(args...)),
	)

	now := time.Now()
	cmd := exec.New().CommandContext(rn.rootCtx, args[0], args[1:]...)
	cmd.SetStdout(rn.trainerLogFile)
	cmd.SetStderr(rn.trainerLogFile)
	runErr := cmd.Run()

	rn.rootCancel()
	select {
	case <-checkDonec:
		rn.cfg.Logger.Info("confirmed exit trainer log streaming")
	case <-time.After(time.Minute):
		rn.cfg.Logger.Warn("took too long to confirm exit trainer log streaming")
	}

	if runErr != nil {
		rn.cfg.Logger.Warn("trainer failed",
			zap.String("took", time.Since(now).String()),
			zap.Error(runErr),
		)
		return fmt.Errorf("trainer exited with error (see %q): %v", cfg.TrainerLogPath, runErr)
	}
	rn.cfg.Logger.Info("trainer completed", zap.String("took", time.Since(now).String()))

	if cfg.CompressOutput {
		if err = rn.compressOutput(); err != nil {
			return err
		}
	}
	return nil
}

// Stop cancels a run in flight and stops log streaming.
func (rn *Runner) Stop() {
	rn.donecCloseOnce.Do(func() {
		close(rn.donec)
	})
	if rn.rootCancel != nil {
		rn.rootCancel()
	}
}

func (rn *Runner) runPrompt(action string) (ok bool) {
	if rn.cfg.Run.Prompt {
		msg := fmt.Sprintf("Ready to %q run %q, should we continue?", action, rn.cfg.Run.RunName)
		prompt := promptui.Select{
			Label: msg,
			Items: []string{
				"No, cancel it!",
				fmt.Sprintf("Yes, let's %q!", action),
			},
		}
		idx, answer, err := prompt.Run()
		if err != nil {
			panic(err)
		}
		if idx != 1 {
			fmt.Printf("cancelled %q [index %d, answer %q]\n", action, idx, answer)
			return false
		}
	}
	return true
}

// stream trainer outputs for debugging purposes
func (rn *Runner) streamTrainerLogs() (checkDonec chan struct{}) {
	checkDonec = make(chan struct{})
	go func() {
		defer func() {
			close(checkDonec)
		}()
		for {
			select {
			case <-rn.cfg.Stopc:
				// stop request terminates the in-flight trainer too
				rn.rootCancel()
				rn.cfg.Logger.Info("exiting trainer log streaming")
				return
			case <-rn.donec:
				rn.cfg.Logger.Info("exiting trainer log streaming")
				return
			case <-rn.rootCtx.Done():
				rn.cfg.Logger.Info("exiting trainer log streaming")
				return
			case <-time.After(10 * time.Second):
			}

			if rn.trainerLogFile != nil {
				rn.trainerLogFile.Sync()
			}
			b, lerr := ioutil.ReadFile(rn.cfg.Run.TrainerLogPath)
			if lerr != nil {
				rn.cfg.Logger.Warn("failed to read trainer log file", zap.Error(lerr))
				continue
			}
			output := strings.TrimSpace(string(b))
			lines := strings.Split(output, "\n")
			linesN := len(lines)

			rn.cfg.Logger.Info("checked trainer output from log file", zap.Int("total-lines", linesN))
			if linesN > 15 {
				output = strings.Join(lines[linesN-15:], "\n")
			}
			fmt.Fprintf(rn.cfg.LogWriter, "\n%q output:\n%s\n\n", rn.cfg.Run.TrainerLogPath, output)
		}
	}()
	return checkDonec
}

func (rn *Runner) compressOutput() error {
	cfg := rn.cfg.Run
	rn.cfg.Logger.Info("compressing output dir",
		zap.String("output-dir", cfg.OutputDir),
		zap.String("tar-gz-path", cfg.OutputDirTarGzPath),
	)
	os.RemoveAll(cfg.OutputDirTarGzPath)
	if err := archiver.Archive([]string{cfg.OutputDir}, cfg.OutputDirTarGzPath); err != nil {
		return fmt.Errorf("failed to archive %q (%v)", cfg.OutputDir, err)
	}
	stat, err := os.Stat(cfg.OutputDirTarGzPath)
	if err != nil {
		return err
	}
	sz := humanize.Bytes(uint64(stat.Size()))
	rn.cfg.Logger.Info("compressed output dir", zap.String("size", sz))
	return nil
}
