package assertions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/paychain/packages/capture"
	"github.com/xeipuuv/gojsonschema"
)

// Schema validates the parsed body against the JSON Schema stored at
// schemaPath. Relative paths are resolved against baseDir and may not
// leave it. The check is skipped when the body did not parse.
func Schema(name string, parsed capture.ParseResult, schemaPath, baseDir string) *Result {
	if parsed.Failed() {
		return skip(name, "skipped: %v", parsed.Err)
	}

	if !filepath.IsAbs(schemaPath) && baseDir != "" {
		schemaPath = filepath.Join(baseDir, schemaPath)
	}
	if err := validatePathWithinBase(schemaPath, baseDir); err != nil {
		return fail(name, "%v", err)
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return fail(name, "failed to read schema file: %v", err)
	}

	return SchemaBytes(name, parsed, schemaData)
}

// SchemaBytes is Schema with the schema document given inline.
func SchemaBytes(name string, parsed capture.ParseResult, schema []byte) *Result {
	if parsed.Failed() {
		return skip(name, "skipped: %v", parsed.Err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(parsed.Body.Map()),
	)
	if err != nil {
		return fail(name, "schema validation error: %v", err)
	}

	if result.Valid() {
		return pass(name)
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fail(name, "schema validation failed: %s", strings.Join(errs, "; "))
}

// validatePathWithinBase checks that the resolved path stays within the base directory
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}
