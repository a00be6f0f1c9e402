// Package runner implements the local chat backend. It shells out to
// the ollama binary with argument vectors only; the prompt is always a
// single opaque argument and the model name is checked against a fresh
// enumeration before any subprocess starts.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"textgenai/internal/core"
	"textgenai/internal/models"
)

type OllamaRunner struct {
	bin     string
	timeout time.Duration
}

func NewOllamaRunner(bin string, timeout time.Duration) *OllamaRunner {
	if bin == "" {
		bin = "ollama"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaRunner{bin: bin, timeout: timeout}
}

// ListModels parses the tabular output of `ollama list` into model
// descriptors. The first column of each row is the model name.
func (r *OllamaRunner) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.bin, "list").Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("model listing timed out")
		}
		return nil, fmt.Errorf("ollama list: %w", err)
	}
	return ParseModelList(string(out)), nil
}

// Run validates the model against the current enumeration, then invokes
// the runner with the prompt as one argument. Blocks until the process
// exits or the timeout fires.
func (r *OllamaRunner) Run(ctx context.Context, model, prompt string) (string, error) {
	installed, err := r.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if !containsModel(installed, model) {
		return "", core.ErrInvalidModel
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.bin, "run", model, prompt)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("generation timed out after %s, please try again", r.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("model runner failed: %s", msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ParseModelList turns `ollama list` output into descriptors. Expected
// shape, header first:
//
//	NAME                ID            SIZE    MODIFIED
//	llama2:latest       78e26419b446  3.8 GB  3 weeks ago
func ParseModelList(out string) []models.ModelInfo {
	var result []models.ModelInfo
	for i, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if i == 0 && strings.HasPrefix(strings.ToUpper(line), "NAME") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		result = append(result, describeModel(fields[0]))
	}
	return result
}

// describeModel derives family/size/quantization from the name tag,
// e.g. "llama2:7b-q4_0" -> {llama2, 7b, q4_0}. Tags like "latest"
// carry no size information.
func describeModel(name string) models.ModelInfo {
	info := models.ModelInfo{Name: name, Family: name}

	family, tag, ok := strings.Cut(name, ":")
	if !ok {
		return info
	}
	info.Family = family

	for _, part := range strings.Split(tag, "-") {
		switch {
		case isParamSize(part):
			info.ParameterSize = part
		case strings.HasPrefix(part, "q") && len(part) > 1:
			info.Quantization = part
		}
	}
	return info
}

func isParamSize(s string) bool {
	if len(s) < 2 {
		return false
	}
	suffix := s[len(s)-1]
	if suffix != 'b' && suffix != 'B' && suffix != 'm' && suffix != 'M' {
		return false
	}
	for _, c := range s[:len(s)-1] {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}

func containsModel(installed []models.ModelInfo, name string) bool {
	for _, m := range installed {
		if m.Name == name {
			return true
		}
	}
	return false
}

var _ core.ModelRunner = (*OllamaRunner)(nil)
