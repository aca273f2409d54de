package enums

import "fmt"

// MealSlot identifies the meal a weekly plan entry is scheduled for.
type MealSlot string

const (
	MealSlotBreakfast MealSlot = "Desayuno"
	MealSlotLunch     MealSlot = "Comida"
	MealSlotDinner    MealSlot = "Cena"
)

var validMealSlots = []MealSlot{
	MealSlotBreakfast,
	MealSlotLunch,
	MealSlotDinner,
}

// String implements fmt.Stringer.
func (m MealSlot) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MealSlot.
func (m MealSlot) IsValid() bool {
	for _, candidate := range validMealSlots {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMealSlot converts raw input into a MealSlot.
func ParseMealSlot(value string) (MealSlot, error) {
	for _, candidate := range validMealSlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid meal slot %q", value)
}
