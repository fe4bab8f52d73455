package product

// Category codes used by the catalog.
const (
	CategoryRing        = "RG"
	CategoryNecklace    = "NL"
	CategoryEarring     = "ER"
	CategoryBangle      = "BG"
	CategoryAnklet      = "AK"
	CategoryBracelet    = "BR"
	CategoryPendant     = "PD"
	CategoryNosePin     = "NP"
	CategoryToeRing     = "TR"
	CategoryChain       = "CH"
	CategoryMangalsutra = "MS"
)

// Metal type codes used by the catalog.
const (
	MetalGold916 = "G916"
	MetalGold750 = "G750"
)

// ReferenceVocabulary is the filter vocabulary of the reference catalog.
var ReferenceVocabulary = Vocabulary{
	Categories: []Category{
		{Code: CategoryRing, DisplayName: "Ring (अंगूठी)"},
		{Code: CategoryNecklace, DisplayName: "Necklace (हार)"},
		{Code: CategoryEarring, DisplayName: "Earring (झुमका)"},
		{Code: CategoryBangle, DisplayName: "Bangle (चूड़ी)"},
		{Code: CategoryAnklet, DisplayName: "Anklet (पायल)"},
		{Code: CategoryBracelet, DisplayName: "Bracelet (कड़ा)"},
		{Code: CategoryPendant, DisplayName: "Pendant (लॉकेट)"},
		{Code: CategoryNosePin, DisplayName: "Nose Pin (नथ)"},
		{Code: CategoryToeRing, DisplayName: "Toe Ring (बिचुए)"},
		{Code: CategoryChain, DisplayName: "Chain (चेन)"},
		{Code: CategoryMangalsutra, DisplayName: "Mangalsutra (मंगलसूत्र)"},
	},
	MetalTypes: []MetalType{
		{Code: MetalGold916, DisplayName: "Gold 916"},
		{Code: MetalGold750, DisplayName: "Gold 750"},
	},
}

// CategoryByCode looks up a category of the reference vocabulary.
func CategoryByCode(code string) (Category, bool) {
	for _, c := range ReferenceVocabulary.Categories {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// MetalTypeByCode looks up a metal type of the reference vocabulary.
func MetalTypeByCode(code string) (MetalType, bool) {
	for _, m := range ReferenceVocabulary.MetalTypes {
		if m.Code == code {
			return m, true
		}
	}
	return MetalType{}, false
}
