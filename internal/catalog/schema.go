package catalog

// fileSchema describes a catalog import file.
var fileSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []string{
		"version",
		"questions",
	},
	"properties": map[string]any{
		"version": map[string]any{
			"type":    "string",
			"pattern": `^v[0-9]+(\.[0-9]+){0,2}$`,
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "topic", "difficulty"},
				"properties": map[string]any{
					"id":    map[string]any{"type": "string", "minLength": 1},
					"title": map[string]any{"type": "string"},
					"topic": map[string]any{"type": "string", "minLength": 1},
					"difficulty": map[string]any{
						"type": "string",
						"enum": []string{"Easy", "Medium", "Hard"},
					},
					"lists": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"order": map[string]any{"type": "integer"},
				},
			},
		},
	},
}
