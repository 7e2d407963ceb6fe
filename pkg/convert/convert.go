// Package convert runs the operator-supplied converter that turns a compressed
// observation file (Hatanaka CRINEX) into a plain RINEX observation file.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
)

// Converter transforms the file at inputPath and returns the path of the result.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// Nop returns its input unchanged. It is used when no converter is configured.
type Nop struct{}

// Convert implements Converter.
func (Nop) Convert(_ context.Context, inputPath string) (string, error) {
	return inputPath, nil
}

// Exec invokes an external executable as `Path Args... inputPath`. It checks only
// the exit status and that the expected output file exists.
type Exec struct {
	Path      string
	Args      []string
	KeepInput bool

	// OutputName maps the input path to the file the executable writes.
	// Defaults to ConvertedName.
	OutputName func(inputPath string) string
}

// NewExec builds an Exec converter for the executable at path.
func NewExec(path string, args []string, keepInput bool) *Exec {
	return &Exec{Path: path, Args: args, KeepInput: keepInput}
}

// Convert implements Converter.
func (e *Exec) Convert(ctx context.Context, inputPath string) (string, error) {
	if e.Path == "" {
		return "", fmt.Errorf("no converter executable configured: %w", pkgerrors.ErrConversion)
	}
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("converter input %s: %v: %w", inputPath, err, pkgerrors.ErrConversion)
	}

	exe, err := resolveExecutable(e.Path)
	if err != nil {
		return "", err
	}

	// The command runs in the input's directory so outputs land alongside it.
	args := append(append([]string{}, e.Args...), filepath.Base(inputPath))
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = filepath.Dir(inputPath)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return "", fmt.Errorf("%s %s: %v: %s: %w", e.Path, filepath.Base(inputPath), err, msg, pkgerrors.ErrConversion)
		}
		return "", fmt.Errorf("%s %s: %v: %w", e.Path, filepath.Base(inputPath), err, pkgerrors.ErrConversion)
	}

	outputPath := e.outputName(inputPath)
	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("converter produced no %s: %w", outputPath, pkgerrors.ErrConversion)
	}

	if !e.KeepInput && outputPath != inputPath {
		if err := os.Remove(inputPath); err != nil {
			return outputPath, fmt.Errorf("remove intermediate %s: %v: %w", inputPath, err, pkgerrors.ErrConversion)
		}
	}
	return outputPath, nil
}

// resolveExecutable makes a relative path such as ./CRX2RNX absolute against the
// process working directory. Bare names are left for PATH lookup.
func resolveExecutable(path string) (string, error) {
	if !strings.ContainsRune(path, filepath.Separator) && !strings.ContainsRune(path, '/') {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve converter %s: %v: %w", path, err, pkgerrors.ErrConversion)
	}
	return abs, nil
}

func (e *Exec) outputName(inputPath string) string {
	if e.OutputName != nil {
		return e.OutputName(inputPath)
	}
	return ConvertedName(inputPath)
}

var (
	shortHatanaka = regexp.MustCompile(`(?i)\.\d\dd$`)
	longHatanaka  = regexp.MustCompile(`(?i)\.crx$`)
)

// ConvertedName returns the RINEX observation name CRX2RNX writes for a
// Hatanaka-compressed input: "corv1010.25d" -> "corv1010.25o" and
// "X.crx" -> "X.rnx". Other names are returned unchanged.
func ConvertedName(inputPath string) string {
	dir, base := filepath.Split(inputPath)
	switch {
	case shortHatanaka.MatchString(base):
		upper := base[len(base)-1] == 'D'
		suffix := "o"
		if upper {
			suffix = "O"
		}
		return dir + base[:len(base)-1] + suffix
	case longHatanaka.MatchString(base):
		ext := base[len(base)-3:]
		repl := "rnx"
		if ext == "CRX" {
			repl = "RNX"
		}
		return dir + base[:len(base)-3] + repl
	default:
		return inputPath
	}
}
