package runconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDerive(t *testing.T) {
	tt := []struct {
		modelName string
		archType  ArchitectureType
		language  Language
		seed      int

		batchSize         int
		accumulationSteps int
		maxSeqLength      int
		outputDir         string
	}{
		{
			modelName: "xlm-roberta-base", archType: TypeLong, language: LanguageFrench, seed: 1,
			batchSize: 1, accumulationSteps: 64, maxSeqLength: 2048,
			outputDir: "sjp/xlm-roberta-base-long/fr/1",
		},
		{
			modelName: "distilbert-base", archType: TypeStandard, language: LanguageGerman, seed: 42,
			batchSize: 16, accumulationSteps: 4, maxSeqLength: 512,
			outputDir: "sjp/distilbert-base-standard/de/42",
		},
		{
			modelName: "xlm-roberta-base", archType: TypeHierarchical, language: LanguageItalian, seed: 7,
			batchSize: 4, accumulationSteps: 16, maxSeqLength: 2048,
			outputDir: "sjp/xlm-roberta-base-hierarchical/it/7",
		},
		{
			modelName: "camembert-base", archType: TypeLong, language: LanguageFrench, seed: 3,
			batchSize: 1, accumulationSteps: 64, maxSeqLength: 2048,
			outputDir: "sjp/camembert-base-long/fr/3",
		},
		{
			modelName: "distilbert-base", archType: TypeLong, language: LanguageGerman, seed: 2,
			batchSize: 2, accumulationSteps: 32, maxSeqLength: 2048,
			outputDir: "sjp/distilbert-base-long/de/2",
		},
		{
			modelName: "xlm-roberta-base", archType: TypeLongformer, language: LanguageGerman, seed: 5,
			batchSize: 4, accumulationSteps: 16, maxSeqLength: 2048,
			outputDir: "sjp/xlm-roberta-base-longformer/de/5",
		},
	}
	for _, tv := range tt {
		cfg := NewDefault()
		cfg.ModelName = tv.modelName
		cfg.ArchitectureType = tv.archType
		cfg.Language = tv.language
		cfg.Seed = tv.seed

		if err := cfg.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("%s-%s: %v", tv.modelName, tv.archType, err)
		}
		if cfg.BatchSize != tv.batchSize {
			t.Fatalf("%s-%s: BatchSize expected %d, got %d", tv.modelName, tv.archType, tv.batchSize, cfg.BatchSize)
		}
		if cfg.AccumulationSteps != tv.accumulationSteps {
			t.Fatalf("%s-%s: AccumulationSteps expected %d, got %d", tv.modelName, tv.archType, tv.accumulationSteps, cfg.AccumulationSteps)
		}
		if cfg.MaxSeqLength != tv.maxSeqLength {
			t.Fatalf("%s-%s: MaxSeqLength expected %d, got %d", tv.modelName, tv.archType, tv.maxSeqLength, cfg.MaxSeqLength)
		}
		if cfg.OutputDir != filepath.FromSlash(tv.outputDir) {
			t.Fatalf("%s-%s: OutputDir expected %q, got %q", tv.modelName, tv.archType, tv.outputDir, cfg.OutputDir)
		}
		if cfg.BatchSize*cfg.AccumulationSteps != cfg.TotalBatchSize {
			t.Fatalf("%s-%s: BatchSize %d * AccumulationSteps %d != TotalBatchSize %d",
				tv.modelName, tv.archType, cfg.BatchSize, cfg.AccumulationSteps, cfg.TotalBatchSize)
		}
	}
}

func TestDeriveTotalBatchSizeInvariant(t *testing.T) {
	for _, at := range ArchitectureTypes() {
		for _, model := range []string{"xlm-roberta-base", "camembert-base", "distilbert-base", "bert-base-german-cased"} {
			cfg := NewDefault()
			cfg.ModelName = model
			cfg.ArchitectureType = at
			cfg.Language = LanguageGerman
			cfg.Seed = 1
			if err := cfg.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			if cfg.BatchSize*cfg.AccumulationSteps != 64 {
				t.Fatalf("%s-%s: expected total batch size 64, got %d*%d",
					model, at, cfg.BatchSize, cfg.AccumulationSteps)
			}
		}
	}
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	cfg := NewDefault()
	cfg.ArchitectureType = TypeStandard
	cfg.Language = LanguageGerman
	cfg.Seed = 1
	if err := cfg.ValidateAndSetDefaults(); err == nil {
		t.Fatal("expected error for missing ModelName")
	}

	cfg = NewDefault()
	cfg.ModelName = "distilbert-base"
	cfg.ArchitectureType = "bilstm"
	cfg.Language = LanguageGerman
	cfg.Seed = 1
	if err := cfg.ValidateAndSetDefaults(); err == nil {
		t.Fatal("expected error for unknown architecture type")
	}

	cfg = NewDefault()
	cfg.ModelName = "distilbert-base"
	cfg.ArchitectureType = TypeStandard
	cfg.Language = "en"
	cfg.Seed = 1
	if err := cfg.ValidateAndSetDefaults(); err == nil {
		t.Fatal("expected error for unsupported language")
	}

	cfg = NewDefault()
	cfg.ModelName = "distilbert-base"
	cfg.ArchitectureType = TypeStandard
	cfg.Language = LanguageGerman
	if err := cfg.ValidateAndSetDefaults(); err == nil {
		t.Fatal("expected error for missing Seed")
	}
}

func TestValidateRejectsUnevenTotalBatchSize(t *testing.T) {
	cfg := NewDefault()
	cfg.ModelName = "distilbert-base"
	cfg.ArchitectureType = TypeStandard
	cfg.Language = LanguageGerman
	cfg.Seed = 1
	cfg.TotalBatchSize = 50

	err := cfg.ValidateAndSetDefaults()
	if err == nil {
		t.Fatal("expected divisibility error, got nil")
	}
	if !strings.Contains(err.Error(), "not divisible") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDeriveDebug(t *testing.T) {
	cfg := NewDefault()
	cfg.ModelName = "distilbert-base"
	cfg.ArchitectureType = TypeStandard
	cfg.Language = LanguageGerman
	cfg.Seed = 42
	cfg.Debug = true

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.BaseDir != "tmp" {
		t.Fatalf("BaseDir expected 'tmp', got %q", cfg.BaseDir)
	}
	if cfg.OutputDir != filepath.FromSlash("tmp/distilbert-base-standard/de/42") {
		t.Fatalf("unexpected OutputDir %q", cfg.OutputDir)
	}
}

func TestDeriveCheckpoint(t *testing.T) {
	cfg := NewDefault()
	cfg.ModelName = "xlm-roberta-base"
	cfg.ArchitectureType = TypeHierarchical
	cfg.Language = LanguageItalian
	cfg.Seed = 7
	cfg.Checkpoint = "sjp/xlm-roberta-base-hierarchical/it/7/checkpoint-4000"

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.ModelPath != cfg.Checkpoint {
		t.Fatalf("ModelPath expected %q, got %q", cfg.Checkpoint, cfg.ModelPath)
	}

	cfg.Checkpoint = ""
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.ModelPath != "xlm-roberta-base" {
		t.Fatalf("ModelPath expected 'xlm-roberta-base', got %q", cfg.ModelPath)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := NewDefault()
	cfg.ModelName = "xlm-roberta-base"
	cfg.ArchitectureType = TypeLong
	cfg.Language = LanguageFrench
	cfg.Seed = 1
	cfg.ConfigPath = filepath.Join(os.TempDir(), "sjp-runner-config-test.yaml")
	defer os.RemoveAll(cfg.ConfigPath)

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Sync(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(cfg.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RunName != "xlm-roberta-base-long-fr-1" {
		t.Fatalf("unexpected RunName %q", loaded.RunName)
	}
	if loaded.BatchSize != 1 || loaded.AccumulationSteps != 64 {
		t.Fatalf("unexpected derived fields %d %d", loaded.BatchSize, loaded.AccumulationSteps)
	}
}

func TestWithRun(t *testing.T) {
	cfg := NewDefault()
	cfg.ModelName = "distilbert-base"
	cfg.ArchitectureType = TypeStandard
	cfg.Language = LanguageGerman
	cfg.Seed = 1
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	vv, err := cfg.WithRun(LanguageItalian, 3)
	if err != nil {
		t.Fatal(err)
	}
	if vv.OutputDir != filepath.FromSlash("sjp/distilbert-base-standard/it/3") {
		t.Fatalf("unexpected OutputDir %q", vv.OutputDir)
	}
	if cfg.Language != LanguageGerman || cfg.Seed != 1 {
		t.Fatalf("receiver mutated: %q %d", cfg.Language, cfg.Seed)
	}
}
