// tools.go
//
// Wrappers around the external source-maintenance binaries (static analysis,
// formatting, documentation, complexity, flaw scanning). Each wrapper
// resolves its tool through the fedsync config file, the tool's *_HOME
// environment variable, or PATH, then delegates and propagates the tool's own
// exit code. Missing tool or missing target directory is an immediate colored
// error, no retry, no partial execution.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	toolsDir    string // target directory handed to the external tool
	formatCheck bool   // format: report violations only
	formatFix   bool   // format: rewrite files in place
)

// toolsCmd groups the external tool wrappers.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run external source-maintenance tools",
}

// fatalTool prints a colored error and exits. The wrappers never continue
// past a missing tool or directory.
func fatalTool(format string, args ...interface{}) {
	color.Red("Error: "+format, args...)
	os.Exit(1)
}

// resolveTool locates the binary for a tool. Resolution order: the
// tools.<name> entry of the fedsync config, $<NAME>_HOME/bin/<binary>, PATH.
func resolveTool(name, binary string) string {
	if configured := viper.GetString("tools." + name); configured != "" {
		if _, err := os.Stat(configured); err != nil {
			fatalTool("configured %s binary %s does not exist", name, configured)
		}
		return configured
	}
	envVar := strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_HOME"
	if home := os.Getenv(envVar); home != "" {
		candidate := filepath.Join(home, "bin", binary)
		if _, err := os.Stat(candidate); err != nil {
			fatalTool("%s is set but %s does not exist", envVar, candidate)
		}
		return candidate
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		fatalTool("cannot find %s: not configured, %s unset, and not on PATH", binary, envVar)
	}
	return path
}

// requireDir validates the target directory before delegating.
func requireDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		fatalTool("target directory %s does not exist", dir)
	}
	return dir
}

// runTool delegates to the external binary, inheriting stdio, and exits with
// the tool's own exit code on failure.
func runTool(bin string, args ...string) {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		fatalTool("failed to run %s: %v", bin, err)
	}
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run cppcheck static analysis over the target directory",
	Run: func(cmd *cobra.Command, args []string) {
		bin := resolveTool("cppcheck", "cppcheck")
		runTool(bin, append([]string{"--quiet", "--error-exitcode=1", requireDir(toolsDir)}, args...)...)
	},
}

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Run clang-tidy over the target directory",
	Run: func(cmd *cobra.Command, args []string) {
		bin := resolveTool("clang-tidy", "clang-tidy")
		files := collectSources(requireDir(toolsDir))
		if len(files) == 0 {
			fatalTool("no source files under %s", toolsDir)
		}
		runTool(bin, append(files, args...)...)
	},
}

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Run clang-format over the target directory",
	Run: func(cmd *cobra.Command, args []string) {
		if formatCheck && formatFix {
			color.Red("Error: --check and --fix are mutually exclusive")
			os.Exit(2)
		}
		bin := resolveTool("clang-format", "clang-format")
		files := collectSources(requireDir(toolsDir))
		if len(files) == 0 {
			fatalTool("no source files under %s", toolsDir)
		}
		mode := "--dry-run"
		if formatFix {
			mode = "-i"
		}
		runTool(bin, append([]string{mode, "--Werror"}, files...)...)
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Run doxygen with the Doxyfile in the target directory",
	Run: func(cmd *cobra.Command, args []string) {
		bin := resolveTool("doxygen", "doxygen")
		dir := requireDir(toolsDir)
		doxyfile := filepath.Join(dir, "Doxyfile")
		if _, err := os.Stat(doxyfile); err != nil {
			fatalTool("no Doxyfile under %s", dir)
		}
		runTool(bin, doxyfile)
	},
}

var complexityCmd = &cobra.Command{
	Use:   "complexity",
	Short: "Run lizard cyclomatic-complexity analysis over the target directory",
	Run: func(cmd *cobra.Command, args []string) {
		bin := resolveTool("lizard", "lizard")
		runTool(bin, append([]string{requireDir(toolsDir)}, args...)...)
	},
}

var flawsCmd = &cobra.Command{
	Use:   "flaws",
	Short: "Run flawfinder over the target directory",
	Run: func(cmd *cobra.Command, args []string) {
		bin := resolveTool("flawfinder", "flawfinder")
		runTool(bin, append([]string{requireDir(toolsDir)}, args...)...)
	},
}

// collectSources gathers the C/C++ sources and headers under dir.
func collectSources(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch filepath.Ext(path) {
		case ".c", ".cc", ".cpp", ".h", ".hh", ".hpp":
			files = append(files, path)
		}
		return nil
	})
	return files
}

func init() {
	toolsCmd.PersistentFlags().StringVar(&toolsDir, "dir", ".", "Target directory for the external tool")
	formatCmd.Flags().BoolVar(&formatCheck, "check", false, "Report formatting violations without rewriting")
	formatCmd.Flags().BoolVar(&formatFix, "fix", false, "Rewrite files in place")

	toolsCmd.AddCommand(checkCmd, tidyCmd, formatCmd, docsCmd, complexityCmd, flawsCmd)

	// Optional fedsync.yaml carrying tools.<name> binary paths.
	viper.SetConfigName("fedsync")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()
}
