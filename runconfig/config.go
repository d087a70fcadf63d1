// Package runconfig defines sjp-runner configuration.
package runconfig

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/colorstring"
	"sigs.k8s.io/yaml" // must use "sigs.k8s.io/yaml"
)

// SJP_RUNNER_PREFIX is the environment variable prefix used for "runconfig".
const SJP_RUNNER_PREFIX = "SJP_RUNNER_"

const (
	// DefaultTotalBatchSize is the effective number of training examples
	// aggregated per optimizer step (batch size x accumulation steps).
	DefaultTotalBatchSize = 64
	// DefaultLearningRate is the fine-tuning learning rate.
	DefaultLearningRate = "3e-5"
	// DefaultEpochs is the number of fine-tuning epochs.
	DefaultEpochs = 5

	// DefaultBaseDir is the output base directory for real runs.
	DefaultBaseDir = "sjp"
	// DefaultDebugBaseDir is the scratch output base directory for debug runs,
	// so a debug iteration never overwrites real results.
	DefaultDebugBaseDir = "tmp"

	// DefaultSaveTotalLimit is the number of checkpoints kept on disk.
	DefaultSaveTotalLimit = 2
	// DefaultDebugSamples caps train/eval/predict example counts in debug mode
	// for CPU-only fast iteration.
	DefaultDebugSamples = 10

	// DefaultRunTimeout bounds a single trainer run.
	DefaultRunTimeout = 24 * time.Hour
)

// Config defines one sjp-runner training run.
// Construct with NewDefault or Load, overwrite from environment variables
// with UpdateFromEnvs, then finalize with ValidateAndSetDefaults.
// All derived fields are read-only after that.
type Config struct {
	mu *sync.RWMutex

	// ModelName is the pretrained model identifier (e.g. "xlm-roberta-base").
	ModelName string `json:"model-name"`
	// ArchitectureType is one of "standard", "long", "longformer", "hierarchical".
	ArchitectureType ArchitectureType `json:"architecture-type"`
	// Language is the train/evaluation language, one of "de", "fr", "it".
	Language Language `json:"language"`
	// Seed seeds model initialization and data shuffling.
	Seed int `json:"seed"`

	// EvaluateOnly is true to skip training.
	// Evaluation and prediction run regardless of this flag.
	EvaluateOnly bool `json:"evaluate-only"`
	// Debug is true to run a scratch iteration: sample counts are capped,
	// fp16 and experiment reporting are disabled, and outputs go to the
	// debug base directory.
	Debug bool `json:"debug"`
	// Checkpoint is a saved training state path to resume from.
	// If set, it is passed to the trainer in place of ModelName.
	Checkpoint string `json:"checkpoint"`

	// DryRun is true to print the trainer command instead of executing it.
	DryRun bool `json:"dry-run"`
	// Prompt is true to enable prompt mode before launching the trainer.
	Prompt bool `json:"prompt"`

	// PythonBinary is the python interpreter used to launch the trainer.
	PythonBinary string `json:"python-binary"`
	// TrainerPath is the path to the external training entry point.
	TrainerPath string `json:"trainer-path"`
	// DataDir is the directory holding train.csv, val.csv, test.csv and
	// labels.json expected by the trainer.
	DataDir string `json:"data-dir"`

	// TotalBatchSize is the target effective batch size.
	// Must be exactly divisible by the per-model batch size.
	TotalBatchSize int `json:"total-batch-size"`
	// LearningRate is passed through to the trainer verbatim.
	LearningRate string `json:"learning-rate"`
	// Epochs is the number of training epochs.
	Epochs int `json:"epochs"`
	// MetricForBestModel selects the evaluation metric for best-model tracking.
	MetricForBestModel string `json:"metric-for-best-model"`
	// SaveTotalLimit is the checkpoint retention limit.
	SaveTotalLimit int `json:"save-total-limit"`
	// DebugSamples is the per-split sample cap injected in debug mode.
	DebugSamples int `json:"debug-samples"`

	// RunTimeout bounds a single trainer run.
	RunTimeout       time.Duration `json:"run-timeout"`
	RunTimeoutString string        `json:"run-timeout-string,omitempty" read-only:"true"`

	// CompressOutput is true to archive the output directory to a .tar.gz
	// after the trainer exits.
	CompressOutput bool `json:"compress-output"`

	// SweepLanguages is the language axis for "sjp-runner sweep".
	// If empty, all supported languages are swept.
	SweepLanguages []string `json:"sweep-languages,omitempty"`
	// SweepSeeds is the seed axis for "sjp-runner sweep".
	SweepSeeds []int `json:"sweep-seeds,omitempty"`
	// SweepContinueOnFailure is true to keep sweeping after a failed run.
	SweepContinueOnFailure bool `json:"sweep-continue-on-failure"`

	// ConfigPath is the configuration file path.
	// sjp-runner is expected to update this file with latest status.
	ConfigPath string `json:"config-path,omitempty"`

	// LogColor is true to output logs in color.
	LogColor bool `json:"log-color"`
	// LogColorOverride is not empty to override "LogColor" setting.
	// If not empty, the automatic color check is not even run and use this value instead.
	LogColorOverride string `json:"log-color-override"`
	// LogLevel configures log level. Only supports debug, info, warn, error, panic, or fatal. Default 'info'.
	LogLevel string `json:"log-level"`
	// LogOutputs is a list of log outputs. Valid values are 'default', 'stderr', 'stdout', or file names.
	// Logs are appended to the existing file, if any.
	LogOutputs []string `json:"log-outputs,omitempty"`

	// BatchSize is the per-device batch size, from the batch-size policy table.
	BatchSize int `json:"batch-size" read-only:"true"`
	// AccumulationSteps is TotalBatchSize / BatchSize.
	AccumulationSteps int `json:"accumulation-steps" read-only:"true"`
	// MaxSeqLength is 512 for "standard", 2048 otherwise.
	MaxSeqLength int `json:"max-seq-length" read-only:"true"`
	// ModelID is ModelName + "-" + ArchitectureType.
	ModelID string `json:"model-id" read-only:"true"`
	// RunName identifies the run for experiment reporting.
	RunName string `json:"run-name" read-only:"true"`
	// BaseDir is the output base directory ("sjp", or "tmp" in debug mode).
	BaseDir string `json:"base-dir" read-only:"true"`
	// OutputDir is BaseDir/ModelID/Language/Seed; the trainer owns all
	// writes beneath it.
	OutputDir string `json:"output-dir" read-only:"true"`
	// ModelPath is Checkpoint when resuming, ModelName otherwise.
	ModelPath string `json:"model-path" read-only:"true"`
	// TrainerLogPath is where trainer stdout/stderr is teed, next to OutputDir.
	TrainerLogPath string `json:"trainer-log-path" read-only:"true"`
	// OutputDirTarGzPath is the archive path when CompressOutput is set.
	OutputDirTarGzPath string `json:"output-dir-tar-gz-path" read-only:"true"`
}

// NewDefault returns a copy of the default configuration.
func NewDefault() *Config {
	vv := defaultConfig
	vv.mu = new(sync.RWMutex)
	return &vv
}

var defaultConfig = Config{
	EvaluateOnly: false,
	Debug:        false,
	DryRun:       false,
	Prompt:       false,

	PythonBinary: "python",
	TrainerPath:  "run_tc.py",
	DataDir:      "data",

	TotalBatchSize:     DefaultTotalBatchSize,
	LearningRate:       DefaultLearningRate,
	Epochs:             DefaultEpochs,
	MetricForBestModel: "f1_score",
	SaveTotalLimit:     DefaultSaveTotalLimit,
	DebugSamples:       DefaultDebugSamples,

	RunTimeout:     DefaultRunTimeout,
	CompressOutput: false,

	LogColor: true,
	LogLevel: "info",

	// default: stderr
	LogOutputs: []string{"stderr"},
}

// Load loads configuration from YAML.
//
// Do not set default values in this function.
// "ValidateAndSetDefaults" must be called separately,
// to prevent overwriting previous data when loaded from disks.
func Load(p string) (cfg *Config, err error) {
	var d []byte
	d, err = ioutil.ReadFile(p)
	if err != nil {
		return nil, err
	}
	cfg = new(Config)
	if err = yaml.Unmarshal(d, cfg, yaml.DisallowUnknownFields); err != nil {
		return nil, err
	}

	cfg.mu = new(sync.RWMutex)
	var ap string
	ap, err = filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = ap

	return cfg, nil
}

// Sync persists current configuration to disk.
func (cfg *Config) Sync() (err error) {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	return cfg.unsafeSync()
}

func (cfg *Config) unsafeSync() (err error) {
	if cfg.ConfigPath == "" {
		return fmt.Errorf("empty ConfigPath")
	}
	var p string
	if !filepath.IsAbs(cfg.ConfigPath) {
		p, err = filepath.Abs(cfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to 'filepath.Abs(%s)' %v", cfg.ConfigPath, err)
		}
		cfg.ConfigPath = p
	}
	var d []byte
	d, err = yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to 'yaml.Marshal' %v", err)
	}
	err = ioutil.WriteFile(cfg.ConfigPath, d, 0600)
	if err != nil {
		return fmt.Errorf("failed to write file %q (%v)", cfg.ConfigPath, err)
	}
	return nil
}

// Colorize prints colorized input, if color output is supported.
func (cfg *Config) Colorize(input string) string {
	colorize := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !cfg.LogColor,
		Reset:   true,
	}
	return colorize.Color(input)
}
