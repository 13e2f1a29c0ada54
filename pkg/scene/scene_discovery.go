package scene

import "strings"

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by NewScene
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"`
	Field       string `json:"field"` // Distance field kind
}

// ListScenes returns the built-in scenes, default first
func ListScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          "default",
			DisplayName: titleCase("combined-spheres"),
			Description: "Two overlapping spheres whose offset rotates around the y axis",
			Field:       "combined",
		},
		{
			ID:          "solid",
			DisplayName: titleCase("solid-sphere"),
			Description: "A single solid sphere; the offset has no effect",
			Field:       "solid",
		},
		{
			ID:          "hollow",
			DisplayName: titleCase("hollow-sphere"),
			Description: "A thin spherical shell around the eye; the offset has no effect",
			Field:       "hollow",
		},
	}
}

// titleCase converts a filename-style string to title case
// e.g., "solid-sphere" -> "Solid Sphere"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
