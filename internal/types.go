package internal

type SourceKind string

const (
	KindLayoutPrices SourceKind = "layout_prices"
	KindGridPrices   SourceKind = "grid_prices"
	KindRecipes      SourceKind = "recipes"
	KindUnknown      SourceKind = "unknown"
)

// PriceMap maps canonical ingredient keys to ARS per kilogram.
type PriceMap map[string]float64

type IngredientItem struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	QtyG float64 `json:"qty_g"`
}

type Recipe struct {
	Name        string           `json:"name"`
	Ingredients []IngredientItem `json:"ingredients"`
}

type DocumentStatus string

const (
	StatusFetched   DocumentStatus = "fetched"
	StatusFiled     DocumentStatus = "filed"
	StatusSkipped   DocumentStatus = "skipped"
	StatusProcessed DocumentStatus = "processed"
	StatusError     DocumentStatus = "error"
)

type DocumentRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	Kind       string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type RunRecord struct {
	RunID       string
	StartedAt   string
	DurationMs  int64
	PriceCount  int
	RecipeCount int
	Trigger     string
}
