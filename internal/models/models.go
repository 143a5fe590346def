package models

// ItemStatus tracks a shopping item through the processing pipeline.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusRefining  ItemStatus = "refining"
	StatusVague     ItemStatus = "vague"
	StatusSearching ItemStatus = "searching"
	StatusReady     ItemStatus = "ready"
	StatusError     ItemStatus = "error"
)

// StorePrice is a single store/price quote attached to an item.
type StorePrice struct {
	StoreName string  `json:"storeName"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency,omitempty"`
	URL       string  `json:"url,omitempty"`
}

// StoreLocation is a cached resolved store branch near the user.
// Distances may be coarse estimates and go stale when the base
// location changes, so the whole cache is invalidated on a move.
type StoreLocation struct {
	StoreName  string  `json:"storeName"`
	Address    string  `json:"address,omitempty"`
	DistanceKm float64 `json:"distanceKm"`
	MapsURI    string  `json:"mapsUri,omitempty"`
}

// ShoppingItem is a single list entry. Prices are replaced wholesale on
// every search attempt; VagueSuggestions only exist while the item is
// waiting for the user to disambiguate.
type ShoppingItem struct {
	ID               string       `json:"id"`
	OriginalName     string       `json:"originalName"`
	RefinedName      string       `json:"refinedName"`
	Emoji            string       `json:"emoji"`
	Status           ItemStatus   `json:"status"`
	Prices           []StorePrice `json:"prices"`
	VagueSuggestions []string     `json:"vagueSuggestions,omitempty"`
	ErrorMessage     string       `json:"errorMessage,omitempty"`
}

// DisplayName prefers the refined name once refinement has run.
func (i ShoppingItem) DisplayName() string {
	if i.RefinedName != "" {
		return i.RefinedName
	}
	return i.OriginalName
}

// InFlight reports whether the item still has pipeline work ahead of it.
func (i ShoppingItem) InFlight() bool {
	switch i.Status {
	case StatusPending, StatusRefining, StatusSearching:
		return true
	}
	return false
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a geocoded location.
type Place struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// Refinement is the Resolution Service's answer for one item name.
type Refinement struct {
	RefinedName string   `json:"refinedName"`
	Emoji       string   `json:"emoji"`
	IsVague     bool     `json:"isVague"`
	Suggestions []string `json:"suggestions"`
}

// UserPreferences is the app-level singleton of user settings.
// LocationName doubles as the search query string when no coordinates
// are available.
type UserPreferences struct {
	Currency     string  `json:"currency"`
	Units        string  `json:"units"`
	Location     *LatLng `json:"location"`
	LocationName string  `json:"locationName"`
	Theme        string  `json:"theme"`
}

// DefaultLocationName is the label shown before any location is known.
const DefaultLocationName = "Detecting Location..."

// FallbackLocationName is the label used when geolocation is denied or
// unavailable.
const FallbackLocationName = "Global Search"

// DefaultPreferences returns the preference defaults used when nothing
// has been persisted yet.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Currency:     "USD",
		Units:        "Metric",
		Location:     nil,
		LocationName: DefaultLocationName,
		Theme:        "light",
	}
}

// CurrencySymbols maps supported currency codes to display glyphs.
var CurrencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// Symbol returns the display glyph for a currency code, falling back to
// the code itself.
func Symbol(currency string) string {
	if s, ok := CurrencySymbols[currency]; ok {
		return s
	}
	return currency
}

// Snapshot is the single persisted blob: items, preferences and the
// store-location cache are always saved and loaded together.
type Snapshot struct {
	Items          []ShoppingItem  `json:"items"`
	Preferences    UserPreferences `json:"preferences"`
	StoreLocations []StoreLocation `json:"storeLocations"`
}

// EmptySnapshot returns the state used when nothing (or nothing
// readable) has been persisted.
func EmptySnapshot() Snapshot {
	return Snapshot{Preferences: DefaultPreferences()}
}
