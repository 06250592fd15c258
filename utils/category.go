package utils

import (
	"strings"
)

// NormalizeCategory maps a category label to its token.
// Input is normalized to lowercase before mapping; known aliases map to their
// canonical token, anything else keeps its lowercase form with spaces as underscores.
func NormalizeCategory(label string) string {
	labelLower := strings.ToLower(strings.TrimSpace(label))

	aliasMap := map[string]string{
		"principal": "main",
		"portada":   "main",
		"front":     "main",
		"cover":     "main",
		"lateral":   "side",
		"perfil":    "side",
		"espalda":   "back",
		"trasera":   "back",
		"detalle":   "detail",
		"detalles":  "detail",
		"close up":  "detail",
		"modelo":    "model",
		"on model":  "model",
	}

	if token, exists := aliasMap[labelLower]; exists {
		return token
	}

	return strings.Join(strings.Fields(labelLower), "_")
}

// ParseColumns parses a comma-separated template column order into category
// tokens, dropping blanks and repeats.
func ParseColumns(csv string) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, part := range strings.Split(csv, ",") {
		token := NormalizeCategory(part)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		columns = append(columns, token)
	}
	return columns
}
