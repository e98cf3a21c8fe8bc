package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sudobility/ratelimit-client/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

var nonFilename = regexp.MustCompile(`[^a-z0-9._-]+`)

func sanitizeFilename(value string) string {
	clean := strings.ToLower(strings.TrimSpace(value))
	clean = nonFilename.ReplaceAllString(clean, "-")
	clean = strings.Trim(clean, "-.")
	if clean == "" {
		return "output"
	}
	return clean
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|yaml|markdown")
	cmd.Flags().String("out", "", "Write output to a file (default stdout)")
	cmd.Flags().String("out-dir", "", "Write output to a directory")
}

func resolveOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

func resolveOutputTargets(cmd *cobra.Command) (outPath string, outDir string, err error) {
	outPath, err = cmd.Flags().GetString("out")
	if err != nil {
		return "", "", err
	}
	outDir, err = cmd.Flags().GetString("out-dir")
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(outPath) != "" && strings.TrimSpace(outDir) != "" {
		return "", "", fmt.Errorf("--out and --out-dir are mutually exclusive")
	}
	return strings.TrimSpace(outPath), strings.TrimSpace(outDir), nil
}

// resolveSinkPath picks the file to write: --out as given, or a file named
// after stem inside --out-dir. Empty means stdout.
func resolveSinkPath(cmd *cobra.Command, format output.Format, stem string) (string, error) {
	outPath, outDir, err := resolveOutputTargets(cmd)
	if err != nil {
		return "", err
	}
	if outDir == "" {
		return outPath, nil
	}
	outDir, err = ensureOutDir(outDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(outDir, fmt.Sprintf("%s.%s", sanitizeFilename(stem), format.Extension())), nil
}

func openSink(path string, stdout io.Writer) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: stdout, close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

func ensureOutDir(dir string) (string, error) {
	clean := strings.TrimSpace(dir)
	if clean == "" {
		return "", nil
	}
	if err := os.MkdirAll(clean, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean, nil
	}
	return abs, nil
}
