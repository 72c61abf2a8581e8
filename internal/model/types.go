package model

// DefaultCategory is assigned to every newly captured catalog item.
const DefaultCategory = "未分类"

// Categories lists the wardrobe categories offered by the picker, in display order.
var Categories = []string{"上衣", "裤子", "裙子", "鞋子", "包包", "配饰", DefaultCategory}

// CatalogItem is a garment in the wardrobe catalog.
// Only Category may change after creation.
type CatalogItem struct {
	ID        string    `json:"id"`
	ImageRef  string    `json:"imageUri"` // Opaque image reference
	Category  string    `json:"category"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Position is a placement offset on the composition surface.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlacedItem is a live placement of a catalog item inside a Scene.
type PlacedItem struct {
	Key      string   // Placement key, unique within the scene
	Ref      string   // CatalogItem.ID, non-owning
	Position Position
}

// SceneKind distinguishes outfit canvases from occasion photos.
type SceneKind string

const (
	// KindOutfit is a scene on a neutral canvas with no background.
	KindOutfit SceneKind = "outfit"
	// KindOccasion is a scene anchored to a user-supplied background photo.
	KindOccasion SceneKind = "occasion"
)

// Valid reports whether k is a known scene kind.
func (k SceneKind) Valid() bool {
	return k == KindOutfit || k == KindOccasion
}

// Scene is the in-memory composition being edited.
type Scene struct {
	ID         string
	Kind       SceneKind
	Background string // Empty for outfit scenes
	Items      []PlacedItem
	CreatedAt  Timestamp
}

// PlacedRecord is a frozen copy of a catalog item together with its position.
// It is the element type of JournalEntry.Items and Occasion.Clothes.
type PlacedRecord struct {
	CatalogItem
	Position *Position `json:"position,omitempty"`
}

// JournalEntry is an immutable snapshot of a committed scene.
type JournalEntry struct {
	ID         string         `json:"id"`
	Type       SceneKind      `json:"type"`
	Items      []PlacedRecord `json:"items"`
	CreatedAt  Timestamp      `json:"createdAt"`
	Preview    *string        `json:"preview"`
	Background string         `json:"background,omitempty"`
}

// Occasion is a background photo together with the draft placements made on it.
type Occasion struct {
	ID        string         `json:"id"`
	ImageRef  string         `json:"imageUri"`
	CreatedAt Timestamp      `json:"createdAt"`
	Clothes   []PlacedRecord `json:"clothes"`
}
