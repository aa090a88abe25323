package stages

import (
	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

// defaultArtDirection frames Connections, Threats, Factions, and any
// unexpected category as a character portrait.
const defaultArtDirection = "A dramatic character portrait, waist-up, " +
	"face lit by a nearby light source, background out of focus."

// artDirections selects the visual focus of a lead image by category. The
// mapping is deliberate art direction, not decoration: a Location rendered
// as a portrait is the wrong picture.
var artDirections = map[models.Category]string{
	models.CategoryLocations: "A wide establishing shot of the place itself. " +
		"No characters, no figures, the architecture and atmosphere carry the frame.",
	models.CategoryObjects: "A macro product shot of the object on a plain surface, " +
		"shallow depth of field. No people in frame.",
	models.CategoryEvents: "A dynamic action scene caught mid-motion, " +
		"motion blur and hard shadows, the moment just before it goes wrong.",
}

// ArtDirection returns the visual-focus directive for a lead category.
func ArtDirection(category models.Category) string {
	if directive, ok := artDirections[category]; ok {
		return directive
	}
	return defaultArtDirection
}
