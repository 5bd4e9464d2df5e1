package parts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSingle   Type = "single"
	TypeAssembly Type = "assembly"
)

type Category string

const (
	CategoryCables      Category = "cables"
	CategoryElectronics Category = "electronics"
	CategoryUpholstery  Category = "upholstery"
	CategoryMechanical  Category = "mechanical"
	CategoryConsumables Category = "consumables"
	CategoryWearable    Category = "wearable"
)

func Categories() []Category {
	return []Category{
		CategoryCables, CategoryElectronics, CategoryUpholstery,
		CategoryMechanical, CategoryConsumables, CategoryWearable,
	}
}

// BOMLine is one component requirement of an assembly: Quantity pieces
// of the referenced part per assembled unit.
type BOMLine struct {
	PartID   string `json:"partId"`
	Quantity int    `json:"quantity"`
}

// Part is a stock keeping unit. Quantity counts finished units on hand;
// for assemblies it is independent of component stock (components move
// only at assemble/disassemble time).
type Part struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Category Category        `json:"category"`
	Type     Type            `json:"type"`
	Quantity int             `json:"quantity"`
	MinLevel int             `json:"minLevel"`
	Price    decimal.Decimal `json:"price"`
	Location string          `json:"location"`
	BOM      []BOMLine       `json:"bom,omitempty"`
}

var ErrInvalid = errors.New("invalid part")

// Validate checks a part before it enters the catalog. resolve looks up
// BOM components so nested assemblies can be rejected; it may be nil for
// single parts.
func (p *Part) Validate(resolve func(id string) (*Part, bool)) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalid)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalid)
	}
	if p.MinLevel < 0 {
		return fmt.Errorf("%w: min level must not be negative", ErrInvalid)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	switch p.Type {
	case TypeSingle:
		if len(p.BOM) != 0 {
			return fmt.Errorf("%w: single part must not carry a BOM", ErrInvalid)
		}
	case TypeAssembly:
		if len(p.BOM) == 0 {
			return fmt.Errorf("%w: assembly requires a non-empty BOM", ErrInvalid)
		}
		seen := make(map[string]bool, len(p.BOM))
		for _, line := range p.BOM {
			if line.Quantity < 1 {
				return fmt.Errorf("%w: BOM quantity for %s must be at least 1", ErrInvalid, line.PartID)
			}
			if seen[line.PartID] {
				return fmt.Errorf("%w: duplicate BOM component %s", ErrInvalid, line.PartID)
			}
			seen[line.PartID] = true
			comp, ok := resolve(line.PartID)
			if !ok {
				return fmt.Errorf("%w: unknown BOM component %s", ErrInvalid, line.PartID)
			}
			// Nested assemblies are unsupported.
			if comp.Type != TypeSingle {
				return fmt.Errorf("%w: BOM component %s is not a single part", ErrInvalid, comp.ID)
			}
		}
	default:
		return fmt.Errorf("%w: unknown part type %q", ErrInvalid, p.Type)
	}
	return nil
}

// BelowMin reports whether on-hand stock reached the reorder threshold.
func (p *Part) BelowMin() bool { return p.Quantity <= p.MinLevel }
