package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flexpos/pkg/errors"
)

// Encoding formats.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// FormatFromPath returns the encoding implied by a file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scenario extension %q", ext)
	}
}

// Read decodes a scenario in the given format from r, fills in defaults for
// omitted fields and validates the result. Read does not close r.
func Read(r io.Reader, format string) (*Scenario, error) {
	sc := New()
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode toml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported scenario format %q", format)
	}
	sc.normalize()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Parse decodes a scenario from data. See [Read].
func Parse(data []byte, format string) (*Scenario, error) {
	return Read(bytes.NewReader(data), format)
}

// Load reads the scenario file at path. The format follows the extension
// and the name defaults to the file's base name.
func Load(path string) (*Scenario, error) {
	if err := errors.ValidateScenarioPath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scenario %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc, err := Read(f, format)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Write encodes sc in the given format. JSON output is indented so it can
// be checked in next to TOML scenarios.
func Write(sc *Scenario, w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(sc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported scenario format %q", format)
	}
	return nil
}

// Save writes sc to path, choosing the format from the extension.
func Save(sc *Scenario, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(sc, f, format)
}
