package create

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateConfigBareTemplateKeepsEnvOverrides(t *testing.T) {
	os.Setenv("SJP_RUNNER_DEBUG", "true")
	defer os.Unsetenv("SJP_RUNNER_DEBUG")

	path = filepath.Join(os.TempDir(), "sjp-runner-create-test.yaml")
	autoPath = false
	defer os.RemoveAll(path)

	createConfigFunc(nil, nil)

	d, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(d), "debug: true") {
		t.Fatalf("environment override not persisted:\n%s", string(d))
	}
}
