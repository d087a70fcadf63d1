package runconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
)

// smallBatchLongModel matches model families that only fit one long-context
// example per device.
var smallBatchLongModel = regexp.MustCompile(`roberta|camembert`)

// batchSizeFor returns the per-device batch size from the batch-size policy
// table. Extending the table requires every entry to evenly divide the target
// total batch size; "ValidateAndSetDefaults" enforces this.
func batchSizeFor(t ArchitectureType, modelName string) (int, error) {
	switch t {
	case TypeStandard:
		return 16, nil
	case TypeLong:
		if smallBatchLongModel.MatchString(modelName) {
			return 1, nil
		}
		return 2, nil
	case TypeLongformer, TypeHierarchical:
		return 4, nil
	}
	return 0, fmt.Errorf("no batch size policy for architecture type %q", t)
}

// maxSeqLengthFor returns the tokenizer truncation length for the
// architecture type.
func maxSeqLengthFor(t ArchitectureType) int {
	if t == TypeStandard {
		return 512
	}
	return 2048
}

// ValidateAndSetDefaults returns an error for invalid configurations.
// And updates empty fields with default values.
// At the end, it writes populated fields to the configuration file,
// if "ConfigPath" is set.
func (cfg *Config) ValidateAndSetDefaults() error {
	if cfg.mu == nil {
		cfg.mu = new(sync.RWMutex)
	}
	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	// reject missing required parameters early, rather than letting empty
	// values flow through to the external trainer
	if cfg.ModelName == "" {
		return errors.New("ModelName is not specified")
	}
	if err := cfg.ArchitectureType.Validate(); err != nil {
		return err
	}
	if err := cfg.Language.Validate(); err != nil {
		return err
	}
	if cfg.Seed < 1 {
		return fmt.Errorf("Seed must be a positive integer, got %d", cfg.Seed)
	}

	if cfg.PythonBinary == "" {
		cfg.PythonBinary = defaultConfig.PythonBinary
	}
	if cfg.TrainerPath == "" {
		cfg.TrainerPath = defaultConfig.TrainerPath
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultConfig.DataDir
	}
	if cfg.TotalBatchSize == 0 {
		cfg.TotalBatchSize = DefaultTotalBatchSize
	}
	if cfg.LearningRate == "" {
		cfg.LearningRate = DefaultLearningRate
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = DefaultEpochs
	}
	if cfg.MetricForBestModel == "" {
		cfg.MetricForBestModel = defaultConfig.MetricForBestModel
	}
	if cfg.SaveTotalLimit == 0 {
		cfg.SaveTotalLimit = DefaultSaveTotalLimit
	}
	if cfg.DebugSamples == 0 {
		cfg.DebugSamples = DefaultDebugSamples
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	cfg.RunTimeoutString = cfg.RunTimeout.String()

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultConfig.LogLevel
	}
	if len(cfg.LogOutputs) == 0 {
		cfg.LogOutputs = []string{"stderr"}
	}

	var err error
	cfg.BatchSize, err = batchSizeFor(cfg.ArchitectureType, cfg.ModelName)
	if err != nil {
		return err
	}
	// make the accumulation division explicit; a policy table entry that
	// does not evenly divide the total batch size is a configuration error,
	// not a silent truncation
	if cfg.TotalBatchSize%cfg.BatchSize != 0 {
		return fmt.Errorf("total batch size %d is not divisible by batch size %d (architecture type %q, model %q)",
			cfg.TotalBatchSize, cfg.BatchSize, cfg.ArchitectureType, cfg.ModelName)
	}
	cfg.AccumulationSteps = cfg.TotalBatchSize / cfg.BatchSize
	cfg.MaxSeqLength = maxSeqLengthFor(cfg.ArchitectureType)

	cfg.ModelID = cfg.ModelName + "-" + string(cfg.ArchitectureType)
	cfg.RunName = fmt.Sprintf("%s-%s-%d", cfg.ModelID, cfg.Language, cfg.Seed)
	if cfg.Debug {
		cfg.BaseDir = DefaultDebugBaseDir
	} else {
		cfg.BaseDir = DefaultBaseDir
	}
	cfg.OutputDir = filepath.Join(cfg.BaseDir, cfg.ModelID, string(cfg.Language), strconv.Itoa(cfg.Seed))
	if cfg.Checkpoint != "" {
		cfg.ModelPath = cfg.Checkpoint
	} else {
		cfg.ModelPath = cfg.ModelName
	}

	// keep trainer logs and archives next to, not inside, the output
	// directory; the trainer owns all writes beneath "OutputDir"
	cfg.TrainerLogPath = cfg.OutputDir + ".trainer.log"
	cfg.OutputDirTarGzPath = cfg.OutputDir + ".tar.gz"

	if len(cfg.SweepLanguages) == 0 {
		for _, l := range Languages() {
			cfg.SweepLanguages = append(cfg.SweepLanguages, string(l))
		}
	}
	for _, l := range cfg.SweepLanguages {
		if err := Language(l).Validate(); err != nil {
			return fmt.Errorf("invalid sweep language: %v", err)
		}
	}
	if len(cfg.SweepSeeds) == 0 {
		cfg.SweepSeeds = []int{cfg.Seed}
	}
	for _, s := range cfg.SweepSeeds {
		if s < 1 {
			return fmt.Errorf("sweep seed must be a positive integer, got %d", s)
		}
	}

	if cfg.ConfigPath != "" {
		return cfg.unsafeSync()
	}
	return nil
}

// WithRun returns a re-derived copy of the configuration for the given
// language and seed. The receiver is not mutated.
func (cfg *Config) WithRun(lang Language, seed int) (*Config, error) {
	cfg.mu.RLock()
	vv := *cfg
	cfg.mu.RUnlock()

	vv.mu = new(sync.RWMutex)
	vv.Language = lang
	vv.Seed = seed
	// per-run copies are not persisted
	vv.ConfigPath = ""
	if err := vv.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &vv, nil
}
