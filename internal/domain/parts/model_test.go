package parts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func resolver(catalog map[string]*Part) func(string) (*Part, bool) {
	return func(id string) (*Part, bool) {
		p, ok := catalog[id]
		return p, ok
	}
}

func TestValidateSingle(t *testing.T) {
	p := Part{Name: "Linka", SKU: "CBL-1", Type: TypeSingle}
	assert.NoError(t, p.Validate(nil))

	assert.ErrorIs(t, (&Part{SKU: "X", Type: TypeSingle}).Validate(nil), ErrInvalid)
	assert.ErrorIs(t, (&Part{Name: "X", Type: TypeSingle}).Validate(nil), ErrInvalid)
	assert.ErrorIs(t, (&Part{Name: "X", SKU: "Y", Type: TypeSingle, Quantity: -1}).Validate(nil), ErrInvalid)
	assert.ErrorIs(t, (&Part{Name: "X", SKU: "Y", Type: TypeSingle, MinLevel: -1}).Validate(nil), ErrInvalid)
	assert.ErrorIs(t, (&Part{Name: "X", SKU: "Y", Type: TypeSingle, Price: decimal.NewFromInt(-1)}).Validate(nil), ErrInvalid)
	assert.ErrorIs(t, (&Part{Name: "X", SKU: "Y", Type: Type("other")}).Validate(nil), ErrInvalid)

	withBOM := Part{Name: "X", SKU: "Y", Type: TypeSingle, BOM: []BOMLine{{PartID: "a", Quantity: 1}}}
	assert.ErrorIs(t, withBOM.Validate(nil), ErrInvalid)
}

func TestValidateAssembly(t *testing.T) {
	catalog := map[string]*Part{
		"bearing": {ID: "bearing", Type: TypeSingle},
		"kit":     {ID: "kit", Type: TypeAssembly},
	}

	ok := Part{Name: "Zestaw", SKU: "KIT-1", Type: TypeAssembly, BOM: []BOMLine{{PartID: "bearing", Quantity: 2}}}
	assert.NoError(t, ok.Validate(resolver(catalog)))

	empty := Part{Name: "Zestaw", SKU: "KIT-1", Type: TypeAssembly}
	assert.ErrorIs(t, empty.Validate(resolver(catalog)), ErrInvalid)

	zeroQty := Part{Name: "Zestaw", SKU: "KIT-1", Type: TypeAssembly, BOM: []BOMLine{{PartID: "bearing", Quantity: 0}}}
	assert.ErrorIs(t, zeroQty.Validate(resolver(catalog)), ErrInvalid)

	dup := Part{Name: "Zestaw", SKU: "KIT-1", Type: TypeAssembly, BOM: []BOMLine{
		{PartID: "bearing", Quantity: 1}, {PartID: "bearing", Quantity: 2},
	}}
	assert.ErrorIs(t, dup.Validate(resolver(catalog)), ErrInvalid)

	unknown := Part{Name: "Zestaw", SKU: "KIT-1", Type: TypeAssembly, BOM: []BOMLine{{PartID: "missing", Quantity: 1}}}
	assert.ErrorIs(t, unknown.Validate(resolver(catalog)), ErrInvalid)

	nested := Part{Name: "Zestaw", SKU: "KIT-1", Type: TypeAssembly, BOM: []BOMLine{{PartID: "kit", Quantity: 1}}}
	assert.ErrorIs(t, nested.Validate(resolver(catalog)), ErrInvalid)
}

func TestBelowMin(t *testing.T) {
	assert.True(t, (&Part{Quantity: 2, MinLevel: 2}).BelowMin())
	assert.True(t, (&Part{Quantity: 0, MinLevel: 2}).BelowMin())
	assert.False(t, (&Part{Quantity: 3, MinLevel: 2}).BelowMin())
}
