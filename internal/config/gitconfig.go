package config

import (
	"os/exec"
	"strings"
)

// Git config keys in the istage section override the YAML file per
// repository, e.g. `git config istage.theme nord` or
// `git config istage.context-lines 5`. Git only allows alphanumerics and
// hyphens in key names, so hyphens map to the underscored YAML keys.

// gitConfigMock allows tests to mock git config output.
var gitConfigMock func(args []string, dir string) (string, error)

// runGitConfig executes a git config command and returns raw output.
func runGitConfig(args []string, dir string) (string, error) {
	if gitConfigMock != nil {
		return gitConfigMock(args, dir)
	}

	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	output, err := cmd.Output()
	if err != nil {
		// git config exits 1 when no key matches, which is not an error
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// loadGitConfig reads istage.* git config values for the repository at
// repoPath and returns them keyed the way parseConfig expects.
func loadGitConfig(repoPath string) (map[string]any, error) {
	output, err := runGitConfig([]string{"config", "--get-regexp", `^istage\.`}, repoPath)
	if err != nil {
		return nil, err
	}
	return parseGitConfigKeys(output), nil
}

// parseGitConfigKeys parses `git config --get-regexp` output such as
// "istage.theme nord\nistage.context-lines 5\n". Git lists scopes from
// system to local, so keeping the last occurrence of a key preserves
// git's own precedence.
func parseGitConfigKeys(output string) map[string]any {
	data := make(map[string]any)
	if output == "" {
		return data
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		// SplitN keeps values that contain spaces intact.
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		key, ok := strings.CutPrefix(parts[0], "istage.")
		if !ok || key == "" {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(key), "-", "_")
		data[key] = parts[1]
	}

	return data
}

// isInGitRepo checks if path is inside a git repository.
func isInGitRepo(path string) bool {
	if path == "" {
		return false
	}
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path
	return cmd.Run() == nil
}
