package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/rafaelamiranda/noticias-ia/pkg/config"
)

const schemaID = "https://github.com/rafaelamiranda/noticias-ia/pkg/config/schema.json"

func main() {
	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	data, err := generate()
	if err != nil {
		log.Fatalf("failed to generate schema: %v", err)
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("failed to write schema file: %v", err)
	}

	fmt.Printf("Schema generated successfully at %s\n", outputPath)
}

// generate reflects config.Config using yaml field names, the keys users write in config files
func generate() ([]byte, error) {
	r := &jsonschema.Reflector{FieldNameTag: "yaml", ExpandedStruct: true}
	schema := r.Reflect(&config.Config{})
	schema.ID = jsonschema.ID(schemaID)
	schema.Title = "noticias-ia configuration"
	schema.Description = "Feed variants, fetch limits, extraction and assembly settings for the news feed generator"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
