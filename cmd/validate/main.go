package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/narration"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <hunt.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &HuntValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Hunt file is valid!")
}

type HuntValidator struct {
	errors []string
}

func (v *HuntValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	// Validate filename format
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("hunt file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidHuntFilename(nameWithoutExt) {
		return fmt.Errorf("hunt filename '%s' must be lowercase snake_case (e.g., my_hunt.json, not my-hunt.json or MyHunt.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var h hunt.Hunt
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&h); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := h.Validate(); err != nil {
		v.addError(err.Error())
	}

	v.validateHunt(&h)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateHunt applies the author-facing checks that the runtime
// tolerates: the engine classifies undefined location ids to the
// unknown group and falls back to built-in narration, but hunt content
// should not lean on either.
func (v *HuntValidator) validateHunt(h *hunt.Hunt) {
	for locationID := range h.Locations {
		v.validateIDFormat("location ID", locationID)
	}

	for i, step := range h.Steps {
		v.validateIDFormat(fmt.Sprintf("step %d location_id", i), step.LocationID)
		if step.LocationID == "" {
			continue
		}
		if _, ok := h.Locations[step.LocationID]; !ok {
			v.addError(fmt.Sprintf("step %d references location '%s' which is not defined in locations", i, step.LocationID))
		}
	}

	// The selector applies the built-in defaults; a hunt that cannot
	// build one would start sessions with broken narration.
	if _, err := narration.NewSelector(h, nil); err != nil {
		v.addError(fmt.Sprintf("narration selector cannot be built: %v", err))
	}
}

func (v *HuntValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *HuntValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidHuntFilename(name string) bool {
	// Allow 'x.' prefix for experimental hunts
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
