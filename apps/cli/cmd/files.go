package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/paychain/packages/core/scenario"
)

var errNoScenarioFiles = errors.New("no .yaml or .yml scenario files found")

// collectFiles expands args into scenario files. Directories are walked
// recursively; files named explicitly are kept whatever their extension.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && scenario.IsScenarioFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, errNoScenarioFiles
	}
	return files, nil
}
