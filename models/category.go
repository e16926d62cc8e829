package models

// CategoryCode identifies a content category for a published deal
type CategoryCode string

const (
	CategoryFindePerfecto CategoryCode = "finde_perfecto"
	CategoryUltraChollo   CategoryCode = "ultra_chollo"
	CategoryChollo        CategoryCode = "chollo" // legacy alias still present in old history files
	CategoryRomantica     CategoryCode = "romantica"
	CategoryCultural      CategoryCode = "cultural"
	CategoryGastronomica  CategoryCode = "gastronomica"
)

// String returns the string representation of the category code
func (c CategoryCode) String() string {
	return string(c)
}

// Valid checks if the category code is part of the closed tag set
func (c CategoryCode) Valid() bool {
	switch c {
	case CategoryFindePerfecto, CategoryUltraChollo, CategoryChollo,
		CategoryRomantica, CategoryCultural, CategoryGastronomica:
		return true
	default:
		return false
	}
}

// Category pairs a code with its human-facing label
type Category struct {
	Code  CategoryCode `json:"code"`
	Label string       `json:"label"`
}

// Labels for the fixed categories and the destination-affinity tags
var (
	LabelFindePerfecto = "🎉 Finde Perfecto"
	LabelUltraChollo   = "🔥 Ultra Chollo"

	DestinationCategoryLabels = map[CategoryCode]string{
		CategoryRomantica:    "❤️ Escapada Romántica",
		CategoryCultural:     "🏛 Escapada Cultural",
		CategoryGastronomica: "🍝 Escapada Gastronómica",
	}
)
