// Package fileutil implements file utilities.
package fileutil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/legal-nlp/sjp-runner/pkg/randutil"
)

// Exist returns true if a file or directory exists.
func Exist(name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(name)
	return err == nil
}

// GetTempFilePath creates a file path to a temporary file that does not exist yet.
func GetTempFilePath() (path string) {
	f, err := ioutil.TempFile(os.TempDir(), fmt.Sprintf("%x", time.Now().UnixNano()))
	if err != nil {
		return filepath.Join(os.TempDir(), fmt.Sprintf("%x%s", time.Now().UnixNano(), randutil.String(5)))
	}
	path = f.Name()
	f.Close()
	os.RemoveAll(path)
	return path
}

// WriteTempFile writes data to a temporary file.
func WriteTempFile(d []byte) (path string, err error) {
	var f *os.File
	f, err = ioutil.TempFile(os.TempDir(), fmt.Sprintf("%X", time.Now().UnixNano()))
	if err != nil {
		return "", err
	}
	path = f.Name()
	_, err = f.Write(d)
	f.Close()
	return path, err
}

// IsDirWriteable checks if dir is writable by writing and removing a file.
// It returns error if dir is NOT writable.
// If the directory does not exist, it returns nil.
func IsDirWriteable(dir string) error {
	if !Exist(dir) {
		return nil
	}
	f := filepath.Join(dir, ".touch")
	// grants owner to make/remove files inside the directory
	if err := ioutil.WriteFile(f, []byte(""), 0700); err != nil {
		return err
	}
	return os.Remove(f)
}
