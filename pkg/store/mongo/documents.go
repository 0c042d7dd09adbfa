package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/spookydecs/circuitry/pkg/inventory"
)

// itemDoc mirrors inventory.Item but leaves the capacities raw, so that a
// string or fractional count in one document degrades to 0 instead of
// failing the whole cursor.
type itemDoc struct {
	ID         string        `bson:"id"`
	Class      string        `bson:"class,omitempty"`
	ClassType  string        `bson:"class_type"`
	ShortName  string        `bson:"short_name,omitempty"`
	Zone       string        `bson:"zone,omitempty"`
	FemaleEnds bson.RawValue `bson:"female_ends"`
	MaleEnds   bson.RawValue `bson:"male_ends"`
}

func (d itemDoc) item() inventory.Item {
	female, _ := inventory.ParseCapacity(rawValue(d.FemaleEnds))
	male, _ := inventory.ParseCapacity(rawValue(d.MaleEnds))
	return inventory.Item{
		ID:         d.ID,
		Class:      inventory.Class(d.Class),
		ClassType:  d.ClassType,
		ShortName:  d.ShortName,
		Zone:       d.Zone,
		FemaleEnds: inventory.Capacity(female),
		MaleEnds:   inventory.Capacity(male),
	}
}

// rawValue converts the BSON types a capacity may arrive as into the Go
// values inventory.ParseCapacity understands.
func rawValue(v bson.RawValue) any {
	switch v.Type {
	case bson.TypeInt32:
		return v.Int32()
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDouble:
		return v.Double()
	case bson.TypeString:
		return v.StringValue()
	default:
		return nil
	}
}

type connectionDoc struct {
	Deployment           string `bson:"deployment"`
	inventory.Connection `bson:",inline"`
}
