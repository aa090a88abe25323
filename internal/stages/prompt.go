package stages

import (
	"fmt"
	"strings"

	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

// systemNarrator is the shared system instruction for every text stage.
const systemNarrator = "You are the transmission editor for a Technoir game: " +
	"a hard-boiled cyberpunk noir voice, terse and concrete. " +
	"Never explain yourself, never break character."

// Prompts are deterministic compositions of prior-stage outputs with fixed
// labels. No stage ever sees its own earlier output.

func framePrompt(theme string) string {
	var b strings.Builder
	b.WriteString("Create the frame of a new transmission.\n")
	fmt.Fprintf(&b, "Theme: %s\n", theme)
	b.WriteString("Produce an evocative title and a one-paragraph setting summary.")
	return b.String()
}

func expositionPrompt(theme string, frame Frame) string {
	var b strings.Builder
	b.WriteString("Write the exposition for this transmission: " +
		"one paragraph each on its technology, its society, and its environment.\n")
	fmt.Fprintf(&b, "Theme: %s\n", theme)
	fmt.Fprintf(&b, "Title: %s\n", frame.Title)
	fmt.Fprintf(&b, "Setting summary: %s", frame.SettingSummary)
	return b.String()
}

func rosterPrompt(theme string, frame Frame, exposition models.Exposition) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Create the lead roster for this transmission: exactly %d leads, %d for each of these categories: %s.\n",
		models.LeadCount, models.LeadsPerCategory, categoryList())
	b.WriteString("Each lead needs an id, a short name, a one-sentence description, and its category.\n")
	fmt.Fprintf(&b, "Theme: %s\n", theme)
	fmt.Fprintf(&b, "Title: %s\n", frame.Title)
	fmt.Fprintf(&b, "Setting summary: %s\n", frame.SettingSummary)
	writeExposition(&b, exposition)
	return b.String()
}

func headerImagePrompt(frame Frame, environment string) string {
	var b strings.Builder
	b.WriteString("A wide cinematic establishing shot for the cover of a cyberpunk noir transmission. ")
	fmt.Fprintf(&b, "Title: %s. ", frame.Title)
	fmt.Fprintf(&b, "Setting: %s ", frame.SettingSummary)
	fmt.Fprintf(&b, "Environment: %s", environment)
	return b.String()
}

func dossierPrompt(lead models.Lead, frame Frame, exposition models.Exposition) string {
	var b strings.Builder
	b.WriteString("Write the dossier for this lead: " +
		"four sensory impressions (sight, sound, smell, vibe) and an expanded description paragraph.\n")
	writeLead(&b, lead)
	fmt.Fprintf(&b, "Title: %s\n", frame.Title)
	fmt.Fprintf(&b, "Setting summary: %s\n", frame.SettingSummary)
	writeExposition(&b, exposition)
	return b.String()
}

func leadImagePrompt(lead models.Lead, frame Frame, sight string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ", ArtDirection(lead.Category))
	fmt.Fprintf(&b, "Subject: %s, %s ", lead.Name, lead.Description)
	fmt.Fprintf(&b, "It looks like: %s ", sight)
	fmt.Fprintf(&b, "World: %s, %s", frame.Title, frame.SettingSummary)
	return b.String()
}

func sensePrompt(lead models.Lead, frame Frame, sense models.Sense, sensory models.Sensory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a new %q impression for this lead. ", sense)
	b.WriteString("It must stay consistent with the other three impressions.\n")
	writeLead(&b, lead)
	fmt.Fprintf(&b, "Title: %s\n", frame.Title)
	fmt.Fprintf(&b, "Setting summary: %s\n", frame.SettingSummary)
	for _, sibling := range models.Senses {
		if sibling == sense {
			continue
		}
		fmt.Fprintf(&b, "Existing %s: %s\n", sibling, sensory.Field(sibling))
	}
	return b.String()
}

func dossierDescriptionPrompt(
	lead models.Lead, frame Frame, exposition models.Exposition, sensory models.Sensory) string {
	var b strings.Builder
	b.WriteString("Write a new expanded description paragraph for this lead. " +
		"It must stay consistent with the existing sensory impressions.\n")
	writeLead(&b, lead)
	fmt.Fprintf(&b, "Title: %s\n", frame.Title)
	fmt.Fprintf(&b, "Setting summary: %s\n", frame.SettingSummary)
	writeExposition(&b, exposition)
	writeSensory(&b, sensory)
	return b.String()
}

func leadImageFullPrompt(lead models.Lead, frame Frame, dossier models.LeadDossier) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ", ArtDirection(lead.Category))
	fmt.Fprintf(&b, "Subject: %s, %s ", lead.Name, lead.Description)
	fmt.Fprintf(&b, "It looks like: %s ", dossier.Sensory.Sight)
	fmt.Fprintf(&b, "Mood: %s ", dossier.Sensory.Vibe)
	fmt.Fprintf(&b, "Background: %s ", dossier.Description)
	fmt.Fprintf(&b, "World: %s, %s", frame.Title, frame.SettingSummary)
	return b.String()
}

func writeLead(b *strings.Builder, lead models.Lead) {
	fmt.Fprintf(b, "Lead: %s (%s)\n", lead.Name, lead.Category)
	fmt.Fprintf(b, "Lead description: %s\n", lead.Description)
}

func writeExposition(b *strings.Builder, exposition models.Exposition) {
	fmt.Fprintf(b, "Technology: %s\n", exposition.Technology)
	fmt.Fprintf(b, "Society: %s\n", exposition.Society)
	fmt.Fprintf(b, "Environment: %s\n", exposition.Environment)
}

func writeSensory(b *strings.Builder, sensory models.Sensory) {
	for _, sense := range models.Senses {
		fmt.Fprintf(b, "Existing %s: %s\n", sense, sensory.Field(sense))
	}
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, category := range models.Categories {
		names[i] = string(category)
	}
	return strings.Join(names, ", ")
}
