package entitlement

import "golang.org/x/text/language"

// Lang is a display language supported for upgrade-prompt copy.
type Lang int

const (
	LangAzerbaijani Lang = iota
	LangEnglish
)

// supported order must match the Lang constants; the first entry is the fallback.
var labelMatcher = language.NewMatcher([]language.Tag{
	language.Azerbaijani,
	language.English,
})

// Tag returns the language tag the label set is written in.
func (l Lang) Tag() language.Tag {
	if l == LangEnglish {
		return language.English
	}
	return language.Azerbaijani
}

// MatchLang picks the closest supported display language for tag.
func MatchLang(tag language.Tag) Lang {
	_, idx, conf := labelMatcher.Match(tag)
	if conf == language.No {
		return LangAzerbaijani
	}
	return Lang(idx)
}

var resourceLabels = map[Resource][2]string{
	ResourceInvoices:   {"Faktura", "Invoice"},
	ResourceClients:    {"Müştəri", "Client"},
	ResourceExpenses:   {"Xərc", "Expense"},
	ResourceBusinesses: {"Biznes", "Business"},
	ResourceProducts:   {"Məhsul", "Product"},
}

var featureLabels = map[Feature][2]string{
	FeatureForecast:     {"AI Trend və Proqnozlar", "Forecast analytics"},
	FeatureCSVExport:    {"CSV ixracı", "CSV export"},
	FeaturePremiumPDF:   {"Premium PDF şablonları", "Premium PDF templates"},
	FeatureCustomThemes: {"Fərdi mövzular", "Custom themes"},
}

// DisplayName returns the human label of a resource, falling back to its identifier.
func (r Resource) DisplayName(tag language.Tag) string {
	if labels, ok := resourceLabels[r]; ok {
		return labels[MatchLang(tag)]
	}
	return string(r)
}

// DisplayName returns the human label of a feature, falling back to its identifier.
func (f Feature) DisplayName(tag language.Tag) string {
	if labels, ok := featureLabels[f]; ok {
		return labels[MatchLang(tag)]
	}
	return string(f)
}
