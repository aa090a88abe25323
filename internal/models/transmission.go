package models

import (
	"time"
)

// Category classifies a Lead into one of the six fixed plot-node categories.
type Category string

const (
	CategoryConnections Category = "Connections"
	CategoryEvents      Category = "Events"
	CategoryLocations   Category = "Locations"
	CategoryObjects     Category = "Objects"
	CategoryThreats     Category = "Threats"
	CategoryFactions    Category = "Factions"
)

// Categories lists every lead category in presentation order.
var Categories = []Category{
	CategoryConnections,
	CategoryEvents,
	CategoryLocations,
	CategoryObjects,
	CategoryThreats,
	CategoryFactions,
}

const (
	// LeadCount is the number of leads in a complete transmission.
	LeadCount = 36
	// LeadsPerCategory is the nominal number of leads per category. The
	// generated roster is accepted even when the split is off, see
	// CategoryCounts.
	LeadsPerCategory = 6
)

// Transmission is the complete generated setting artifact.
type Transmission struct {
	// ID is the creation timestamp in milliseconds.
	ID             int64      `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	Title          string     `json:"title"`
	SettingSummary string     `json:"settingSummary"`
	Exposition     Exposition `json:"exposition"`
	// HeaderImage is a data URI. Empty means the image is unavailable,
	// which never blocks the rest of the transmission.
	HeaderImage string `json:"headerImageUrl,omitempty"`
	Leads       []Lead `json:"leads"`
}

// Exposition is the three-paragraph scene-setting block.
type Exposition struct {
	Technology  string `json:"technology"`
	Society     string `json:"society"`
	Environment string `json:"environment"`
}

// Lead is a single plot node. Its category is fixed at creation.
type Lead struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Dossier     *LeadDossier `json:"dossier,omitempty"`
}

// LeadDossier is the optional deep-dive content attached to a lead.
type LeadDossier struct {
	Sensory     Sensory `json:"sensory"`
	Description string  `json:"expandedDescription"`
	// Image is a data URI, empty when unavailable.
	Image string `json:"imageUrl,omitempty"`
}

// Sensory holds the four atomic descriptive fields of a dossier.
type Sensory struct {
	Sight string `json:"sight"`
	Sound string `json:"sound"`
	Smell string `json:"smell"`
	Vibe  string `json:"vibe"`
}

// Sense names one of the four sensory fields.
type Sense string

const (
	SenseSight Sense = "sight"
	SenseSound Sense = "sound"
	SenseSmell Sense = "smell"
	SenseVibe  Sense = "vibe"
)

// Senses lists the sensory fields in presentation order.
var Senses = []Sense{SenseSight, SenseSound, SenseSmell, SenseVibe}

// NewTransmission stamps a freshly generated transmission with its identity.
func NewTransmission(now time.Time, title, settingSummary string) *Transmission {
	return &Transmission{
		ID:             now.UnixMilli(),
		CreatedAt:      now,
		Title:          title,
		SettingSummary: settingSummary,
	}
}

// Lead returns the lead with the given ID or nil.
func (t *Transmission) Lead(id string) *Lead {
	for i := range t.Leads {
		if t.Leads[i].ID == id {
			return &t.Leads[i]
		}
	}
	return nil
}

// ApplyEdit updates the lead's name and description. A change to either
// clears the dossier: its content was generated against the old wording and
// is no longer consistent with the lead.
func (l *Lead) ApplyEdit(name, description string) {
	if l.Name == name && l.Description == description {
		return
	}
	l.Name = name
	l.Description = description
	l.Dossier = nil
}

// ValidCategory reports whether c is one of the six fixed categories.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryCounts tallies leads per category. The roster stage only prompts
// for a 6-per-category split and never enforces it, so callers use this to
// audit the distribution.
func CategoryCounts(leads []Lead) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, lead := range leads {
		counts[lead.Category]++
	}
	return counts
}

// Field returns the value of the named sensory field.
func (s Sensory) Field(sense Sense) string {
	switch sense {
	case SenseSight:
		return s.Sight
	case SenseSound:
		return s.Sound
	case SenseSmell:
		return s.Smell
	case SenseVibe:
		return s.Vibe
	}
	return ""
}

// SetField replaces the value of the named sensory field.
func (s *Sensory) SetField(sense Sense, value string) {
	switch sense {
	case SenseSight:
		s.Sight = value
	case SenseSound:
		s.Sound = value
	case SenseSmell:
		s.Smell = value
	case SenseVibe:
		s.Vibe = value
	}
}
