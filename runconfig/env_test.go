package runconfig

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestEnv(t *testing.T) {
	cfg := NewDefault()

	os.Setenv("SJP_RUNNER_MODEL_NAME", "xlm-roberta-base")
	os.Setenv("SJP_RUNNER_ARCHITECTURE_TYPE", "hierarchical")
	os.Setenv("SJP_RUNNER_LANGUAGE", "it")
	os.Setenv("SJP_RUNNER_SEED", "7")
	os.Setenv("SJP_RUNNER_DEBUG", "true")
	os.Setenv("SJP_RUNNER_EVALUATE_ONLY", "true")
	os.Setenv("SJP_RUNNER_CHECKPOINT", "sjp/xlm-roberta-base-hierarchical/it/7/checkpoint-500")
	os.Setenv("SJP_RUNNER_PYTHON_BINARY", "python3")
	os.Setenv("SJP_RUNNER_TRAINER_PATH", "scripts/run_tc.py")
	os.Setenv("SJP_RUNNER_DATA_DIR", "corpus")
	os.Setenv("SJP_RUNNER_LOG_LEVEL", "debug")
	os.Setenv("SJP_RUNNER_RUN_TIMEOUT", "2h")
	os.Setenv("SJP_RUNNER_SWEEP_LANGUAGES", "de,fr")
	os.Setenv("SJP_RUNNER_SWEEP_SEEDS", "1,2,3")
	os.Setenv("SJP_RUNNER_LOG_OUTPUTS", "stderr,sjp-runner.log")

	defer func() {
		os.Unsetenv("SJP_RUNNER_MODEL_NAME")
		os.Unsetenv("SJP_RUNNER_ARCHITECTURE_TYPE")
		os.Unsetenv("SJP_RUNNER_LANGUAGE")
		os.Unsetenv("SJP_RUNNER_SEED")
		os.Unsetenv("SJP_RUNNER_DEBUG")
		os.Unsetenv("SJP_RUNNER_EVALUATE_ONLY")
		os.Unsetenv("SJP_RUNNER_CHECKPOINT")
		os.Unsetenv("SJP_RUNNER_PYTHON_BINARY")
		os.Unsetenv("SJP_RUNNER_TRAINER_PATH")
		os.Unsetenv("SJP_RUNNER_DATA_DIR")
		os.Unsetenv("SJP_RUNNER_LOG_LEVEL")
		os.Unsetenv("SJP_RUNNER_RUN_TIMEOUT")
		os.Unsetenv("SJP_RUNNER_SWEEP_LANGUAGES")
		os.Unsetenv("SJP_RUNNER_SWEEP_SEEDS")
		os.Unsetenv("SJP_RUNNER_LOG_OUTPUTS")
	}()

	if err := cfg.UpdateFromEnvs(); err != nil {
		t.Fatal(err)
	}

	if cfg.ModelName != "xlm-roberta-base" {
		t.Fatalf("ModelName unexpected %q", cfg.ModelName)
	}
	if cfg.ArchitectureType != TypeHierarchical {
		t.Fatalf("ArchitectureType unexpected %q", cfg.ArchitectureType)
	}
	if cfg.Language != LanguageItalian {
		t.Fatalf("Language unexpected %q", cfg.Language)
	}
	if cfg.Seed != 7 {
		t.Fatalf("Seed expected 7, got %d", cfg.Seed)
	}
	if !cfg.Debug {
		t.Fatalf("Debug unexpected %v", cfg.Debug)
	}
	if !cfg.EvaluateOnly {
		t.Fatalf("EvaluateOnly unexpected %v", cfg.EvaluateOnly)
	}
	if cfg.Checkpoint != "sjp/xlm-roberta-base-hierarchical/it/7/checkpoint-500" {
		t.Fatalf("Checkpoint unexpected %q", cfg.Checkpoint)
	}
	if cfg.PythonBinary != "python3" {
		t.Fatalf("PythonBinary unexpected %q", cfg.PythonBinary)
	}
	if cfg.TrainerPath != "scripts/run_tc.py" {
		t.Fatalf("TrainerPath unexpected %q", cfg.TrainerPath)
	}
	if cfg.DataDir != "corpus" {
		t.Fatalf("DataDir unexpected %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel unexpected %q", cfg.LogLevel)
	}
	if cfg.RunTimeout != 2*time.Hour {
		t.Fatalf("RunTimeout unexpected %v", cfg.RunTimeout)
	}
	if !reflect.DeepEqual(cfg.SweepLanguages, []string{"de", "fr"}) {
		t.Fatalf("SweepLanguages unexpected %v", cfg.SweepLanguages)
	}
	if !reflect.DeepEqual(cfg.SweepSeeds, []int{1, 2, 3}) {
		t.Fatalf("SweepSeeds unexpected %v", cfg.SweepSeeds)
	}
	if !reflect.DeepEqual(cfg.LogOutputs, []string{"stderr", "sjp-runner.log"}) {
		t.Fatalf("LogOutputs unexpected %v", cfg.LogOutputs)
	}
}

func TestEnvReadOnly(t *testing.T) {
	cfg := NewDefault()

	os.Setenv("SJP_RUNNER_BATCH_SIZE", "8")
	defer os.Unsetenv("SJP_RUNNER_BATCH_SIZE")

	if err := cfg.UpdateFromEnvs(); err == nil {
		t.Fatal("expected error for setting read-only field")
	}
}
