package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownItem is returned when an item name is not in the ledger
	ErrUnknownItem = errors.New("unknown item")
	// ErrUnknownCategory is returned when a category is not declared
	ErrUnknownCategory = errors.New("unknown category")
	// ErrNoRequirement is returned when clicking a cell that has nothing to track
	ErrNoRequirement = errors.New("no requirement to track")
	// ErrConfirmationRequired guards destructive operations
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrSlotsFull is returned when picking more remix items than the bundle allows
	ErrSlotsFull = errors.New("all slots already picked")
	// ErrUnknownPick is returned when picking an item the remix bundle does not list
	ErrUnknownPick = errors.New("item is not a candidate of the remix bundle")
	// ErrNoReplacement is returned when picking items before a replacement is chosen
	ErrNoReplacement = errors.New("no replacement bundle chosen")
	// ErrInvalidReplacement is returned when a remix bundle cannot replace the base bundle
	ErrInvalidReplacement = errors.New("bundle cannot replace the base bundle")
)

// NotFoundError is returned when a catalog lookup fails
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidateQuality validates a quality tier
func ValidateQuality(q string) error {
	switch Quality(q) {
	case QualitySilver, QualityGold, QualityIridium:
		return nil
	default:
		return fmt.Errorf("invalid quality: must be one of: silver, gold, iridium")
	}
}

// ValidateCategoryName validates a custom category name
func ValidateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if strings.ContainsAny(name, ",\t\n") {
		return fmt.Errorf("invalid category name %q: must not contain commas, tabs or newlines", name)
	}
	return nil
}

// ValidateQuantity validates a custom requirement quantity
func ValidateQuantity(n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid quantity: must be positive")
	}
	return nil
}
