package enums

import "fmt"

// IngredientStatus mirrors the ingredient_status enum in Postgres. The labels
// are the Spanish ones the product ships with.
type IngredientStatus string

const (
	IngredientStatusAvailable IngredientStatus = "Disponible"
	IngredientStatusMissing   IngredientStatus = "Faltante"
	IngredientStatusUrgent    IngredientStatus = "Urgente"
)

var validIngredientStatuses = []IngredientStatus{
	IngredientStatusAvailable,
	IngredientStatusMissing,
	IngredientStatusUrgent,
}

// String implements fmt.Stringer.
func (s IngredientStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IngredientStatus.
func (s IngredientStatus) IsValid() bool {
	for _, candidate := range validIngredientStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIngredientStatus converts raw input into an IngredientStatus.
func ParseIngredientStatus(value string) (IngredientStatus, error) {
	for _, candidate := range validIngredientStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ingredient status %q", value)
}
