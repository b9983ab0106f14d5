package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/flexpos/pkg/pipeline"
)

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .txt, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) || ext == ".txt" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// extension returns the file extension used for a format.
func extension(format string) string {
	switch format {
	case pipeline.FormatText:
		return "txt"
	case pipeline.FormatJSON:
		return "frames.json"
	default:
		return format
	}
}

// artifactPaths returns the file each format is written to.
func artifactPaths(base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		paths[f] = base + "." + extension(f)
	}
	return paths
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stdout    io.Writer
}

// writeArtifacts writes each artifact to its own file and returns the paths
// in format order. A single text artifact with no output path goes to
// stdout instead.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if p.output == "" && textOnly(p.formats) {
		w := p.stdout
		if w == nil {
			w = os.Stdout
		}
		_, err := fmt.Fprintln(w, string(p.artifacts[pipeline.FormatText]))
		return nil, err
	}

	paths := artifactPaths(basePath(p.output, p.input), p.formats)
	written := make([]string, 0, len(p.formats))
	for _, f := range p.formats {
		data, ok := p.artifacts[f]
		if !ok {
			continue
		}
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func textOnly(formats []string) bool {
	return len(formats) == 1 && formats[0] == pipeline.FormatText
}
