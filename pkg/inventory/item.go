package inventory

import (
	"github.com/spookydecs/circuitry/pkg/errors"
)

// Class is the top-level inventory class of an item.
type Class string

// Inventory classes.
const (
	ClassDecoration Class = "Decoration"
	ClassAccessory  Class = "Accessory"
	ClassLight      Class = "Light"
	ClassReceptacle Class = "Receptacle"
)

// Item is a read-only snapshot of an inventory record.
// Zone is empty for items that have not been placed.
type Item struct {
	ID         string   `json:"id" bson:"id"`
	Class      Class    `json:"class,omitempty" bson:"class,omitempty"`
	ClassType  string   `json:"class_type" bson:"class_type"`
	ShortName  string   `json:"short_name,omitempty" bson:"short_name,omitempty"`
	Zone       string   `json:"zone,omitempty" bson:"zone,omitempty"`
	FemaleEnds Capacity `json:"female_ends" bson:"female_ends"`
	MaleEnds   Capacity `json:"male_ends" bson:"male_ends"`
}

// DisplayName returns the short name if set, otherwise the ID.
func (it Item) DisplayName() string {
	if it.ShortName != "" {
		return it.ShortName
	}
	return it.ID
}

// Validate checks the fields every downstream component relies on.
func (it Item) Validate() error {
	if err := errors.ValidateID("item", it.ID); err != nil {
		return err
	}
	return errors.ValidateZone(it.Zone)
}

// ValidItems returns the items that pass [Item.Validate], in input order,
// along with one error per rejected record. Later duplicates of an ID are
// rejected as well, since an ID must resolve to a single item.
func ValidItems(items []Item) ([]Item, []error) {
	out := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	var problems []error
	for i, it := range items {
		if err := it.Validate(); err != nil {
			problems = append(problems, errors.Wrap(errors.ErrCodeInvalidInput, err, "item #%d", i))
			continue
		}
		if seen[it.ID] {
			problems = append(problems, errors.New(errors.ErrCodeInvalidInput, "item #%d: duplicate item ID %s", i, it.ID))
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out, problems
}

// Index maps item IDs to items.
func Index(items []Item) map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}
