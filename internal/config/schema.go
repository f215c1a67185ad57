package config

import "github.com/wesleyorama2/corelat/pkg/jsonschema"

// schemaJSON describes the accepted config document. Semantic checks that
// need more than one field live in Validate.
const schemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "corelat run configuration",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"iterations":    { "type": "integer", "minimum": 1, "maximum": 4294967295 },
		"samples":       { "type": "integer", "minimum": 1, "maximum": 4294967294 },
		"benches": {
			"type": "array",
			"minItems": 1,
			"items": { "type": ["string", "integer"] }
		},
		"cores": {
			"type": "array",
			"items": { "type": "integer", "minimum": 0 }
		},
		"csv":           { "type": "boolean" },
		"format":        { "enum": ["text", "json", "yaml"] },
		"output":        { "type": "string" },
		"select":        { "type": "string" },
		"noColor":       { "type": "boolean" },
		"logLevel":      { "enum": ["panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"] },
		"msgDelaySpins": { "type": "integer", "minimum": 0 },
		"memSize":       { "type": "integer", "minimum": 4096 },
		"memChunks":     { "type": "integer", "minimum": 1 },
		"overhead": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"minPerRead": { "type": "number", "minimum": 0 },
				"maxPerRead": { "type": "number", "exclusiveMinimum": 0 }
			}
		}
	}
}`

var configSchema = jsonschema.MustCompile("corelat-config.json", schemaJSON)
