package stages

import (
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/stretchr/testify/require"
	"testing"
)

// The category set is small and the mapping is a correctness rule, so it is
// tested exhaustively.
func TestArtDirection(t *testing.T) {
	tests := []struct {
		category     models.Category
		wantContains string
		wantPortrait bool
	}{
		{category: models.CategoryLocations, wantContains: "No characters"},
		{category: models.CategoryObjects, wantContains: "No people"},
		{category: models.CategoryEvents, wantContains: "action scene"},
		{category: models.CategoryConnections, wantPortrait: true},
		{category: models.CategoryThreats, wantPortrait: true},
		{category: models.CategoryFactions, wantPortrait: true},
		{category: models.Category("Unheard Of"), wantPortrait: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			directive := ArtDirection(tt.category)
			if tt.wantPortrait {
				require.Equal(t, defaultArtDirection, directive)
				return
			}
			require.Contains(t, directive, tt.wantContains)
		})
	}
}

func TestEveryCategoryHasADirective(t *testing.T) {
	for _, category := range models.Categories {
		require.NotEmpty(t, ArtDirection(category))
	}
}
