package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
)

const JackFileSuffix = ".jack"

func IsJackFile(name string) bool {
	return strings.HasSuffix(name, JackFileSuffix)
}

// Discover lists the compilation units of the build. A single .jack file is returned as is;
// a directory is searched with the include globs minus the exclude globs. The result is in
// natural order (Square2.jack before Square10.jack) so builds are reproducible.
func Discover(config Config) ([]string, error) {
	info, err := os.Stat(config.Sources)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsJackFile(config.Sources) {
			return nil, fmt.Errorf("%s is not a %s file", config.Sources, JackFileSuffix)
		}
		return []string{config.Sources}, nil
	}
	return discoverDir(config.Sources, config.Include, config.Exclude)
}

func discoverDir(root string, include, exclude []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := map[string]struct{}{}
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			excluded, err := isExcluded(match, exclude)
			if err != nil {
				return nil, err
			}
			if excluded || !isRegularFile(filepath.Join(root, match)) {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, match)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return natural.Less(files[i], files[j])
	})
	for i, file := range files {
		files[i] = filepath.Join(root, filepath.FromSlash(file))
	}
	return files, nil
}

func isExcluded(name string, exclude []string) (bool, error) {
	for _, pattern := range exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
