package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ScriptExt = ".sl"

type Script struct {
	Name    string
	Path    string
	Source  string
	Program Program
}

// ReadScriptsFromDir loads and parses every script file in dir, ordered by
// file name. Subdirectories and other files are ignored.
func ReadScriptsFromDir(dir string) ([]Script, error) {
	paths, err := ListScriptsInDir(dir)
	if err != nil {
		return nil, err
	}

	scripts := []Script{}
	for _, path := range paths {
		s, err := ReadScriptFromFile(path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}

	return scripts, nil
}

// ListScriptsInDir returns the paths of the script files in dir, ordered by
// file name, without reading them.
func ListScriptsInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ScriptExt {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

func ReadScriptFromFile(path string) (Script, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	script := Script{
		Name:   scriptNameFromPath(path),
		Path:   path,
		Source: string(bytes),
	}

	prog, err := Parse(script.Source)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	script.Program = prog

	return script, nil
}

func scriptNameFromPath(path string) string {
	fileName := filepath.Base(path)
	parts := strings.Split(fileName, ".")
	return parts[0]
}
