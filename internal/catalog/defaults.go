package catalog

import "github.com/tally-dev/tally/internal/model"

// DefaultCategories returns the category set a new book starts with. The
// first entry is always the Uncategorized fallback.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: model.UncategorizedName, Color: "#9ca3af", SecondaryColor: "#f3f4f6", Icon: "circle-help"},
		{ID: 2, Name: "Income", Color: "#16a34a", SecondaryColor: "#dcfce7", Icon: "banknote"},
		{ID: 3, Name: "Housing", Color: "#b45309", SecondaryColor: "#fef3c7", Icon: "house"},
		{ID: 4, Name: "Groceries", Color: "#65a30d", SecondaryColor: "#ecfccb", Icon: "shopping-basket"},
		{ID: 5, Name: "Restaurants", Color: "#ea580c", SecondaryColor: "#ffedd5", Icon: "utensils"},
		{ID: 6, Name: "Transportation", Color: "#0284c7", SecondaryColor: "#e0f2fe", Icon: "bus"},
		{ID: 7, Name: "Healthcare", Color: "#dc2626", SecondaryColor: "#fee2e2", Icon: "heart-pulse"},
		{ID: 8, Name: "Savings", Color: "#0d9488", SecondaryColor: "#ccfbf1", Icon: "piggy-bank"},
		{ID: 9, Name: "Education", Color: "#4f46e5", SecondaryColor: "#e0e7ff", Icon: "graduation-cap"},
		{ID: 10, Name: "Entertainment", Color: "#c026d3", SecondaryColor: "#fae8ff", Icon: "clapperboard"},
		{ID: 11, Name: "Shopping", Color: "#db2777", SecondaryColor: "#fce7f3", Icon: "shopping-bag"},
		{ID: 12, Name: "Hobbies", Color: "#7c3aed", SecondaryColor: "#ede9fe", Icon: "palette"},
		{ID: 13, Name: "Miscellaneous", Color: "#57534e", SecondaryColor: "#f5f5f4", Icon: "shapes"},
	}
}
