package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/abibind/abi"
	"github.com/roach88/abibind/internal/ir"
)

func TestMapElementaryAndArrays(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		dynamic  bool
	}{
		{"address", "common.Address", false},
		{"bool", "bool", false},
		{"string", "string", true},
		{"bytes", "[]byte", true},
		{"bytes1", "[1]byte", false},
		{"bytes32", "[32]byte", false},
		{"function", "[24]byte", false},
		{"uint8", "uint8", false},
		{"uint24", "*big.Int", false},
		{"uint64", "uint64", false},
		{"uint72", "*big.Int", false},
		{"uint256", "*big.Int", false},
		{"int16", "int16", false},
		{"int40", "*big.Int", false},
		{"int32", "int32", false},
		{"int256", "*big.Int", false},
		{"uint256[]", "[]*big.Int", true},
		{"address[3]", "[3]common.Address", false},
		{"uint8[2][]", "[][2]uint8", true},
		{"string[2][3]", "[3][2]string", true},
	}

	m := New()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := abi.ParseCanonical(tt.input)
			require.NoError(t, err)

			got, err := m.Map(typ)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Expr)
			assert.Equal(t, tt.dynamic, got.Dynamic)
			assert.Equal(t, typ, got.Type)
		})
	}
	assert.Empty(t, m.Structs(), "no tuples were mapped")
}

func TestMapIsContextFree(t *testing.T) {
	typ := abi.MustParseTypes("(uint256,bytes)[]")[0]

	a, err := New().Map(typ)
	require.NoError(t, err)
	b, err := New().Map(typ)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMapNamedTuple(t *testing.T) {
	typ, err := abi.NewType("tuple[]", "struct Market.Order[]", []abi.Component{
		{Name: "maker", Type: "address"},
		{Name: "token_ids", Type: "uint256[]"},
		{Name: "", Type: "bool"},
		{Name: "fee", Type: "tuple", InternalType: "struct Market.Fee", Components: []abi.Component{
			{Name: "bps", Type: "uint16"},
			{Name: "recipient", Type: "address"},
		}},
	})
	require.NoError(t, err)

	m := New()
	got, err := m.Map(typ)
	require.NoError(t, err)
	assert.Equal(t, "[]Order", got.Expr)

	structs := m.Structs()
	require.Len(t, structs, 2)
	assert.Equal(t, "Fee", structs[0].Name)
	assert.Equal(t, "Order", structs[1].Name)

	order := structs[1]
	names := make([]string, len(order.Fields))
	exprs := make([]string, len(order.Fields))
	for i, f := range order.Fields {
		names[i] = f.Name
		exprs[i] = f.Type.Expr
	}
	assert.Equal(t, []string{"Maker", "TokenIds", "Field2", "Fee"}, names)
	assert.Equal(t, []string{"common.Address", "[]*big.Int", "bool", "Fee"}, exprs)
}

func TestMapAnonymousTupleName(t *testing.T) {
	typ, err := abi.NewType("tuple", "", []abi.Component{
		{Name: "a", Type: "uint256"},
		{Name: "b", Type: "address"},
	})
	require.NoError(t, err)

	m := New()
	got, err := m.Map(typ)
	require.NoError(t, err)
	assert.Regexp(t, `^Tuple[0-9a-f]{8}$`, got.Expr)

	// Same shape, same struct.
	again, err := m.Map(typ)
	require.NoError(t, err)
	assert.Equal(t, got.Expr, again.Expr)
	assert.Len(t, m.Structs(), 1)

	// Field names are part of the shape.
	renamed, err := abi.NewType("tuple", "", []abi.Component{
		{Name: "x", Type: "uint256"},
		{Name: "b", Type: "address"},
	})
	require.NoError(t, err)
	other, err := m.Map(renamed)
	require.NoError(t, err)
	assert.NotEqual(t, got.Expr, other.Expr)
}

func TestMapConflictingStructShapes(t *testing.T) {
	first, err := abi.NewType("tuple", "struct Point", []abi.Component{{Name: "x", Type: "uint256"}})
	require.NoError(t, err)
	second, err := abi.NewType("tuple", "struct Lib.Point", []abi.Component{{Name: "x", Type: "int256"}})
	require.NoError(t, err)

	m := New()
	_, err = m.Map(first)
	require.NoError(t, err)
	_, err = m.Map(second)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.DuplicateEmittedName))
}

func TestMapDuplicateFieldNames(t *testing.T) {
	typ, err := abi.NewType("tuple", "struct Pair", []abi.Component{
		{Name: "Field1", Type: "uint256"},
		{Name: "", Type: "uint256"},
	})
	require.NoError(t, err)

	_, err = New().Map(typ)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.DuplicateEmittedName))
}

func TestMapParamIndexed(t *testing.T) {
	tests := []struct {
		typ      string
		indexed  bool
		expected string
	}{
		{"address", true, "common.Address"},
		{"uint256", true, "*big.Int"},
		{"bytes32", true, "[32]byte"},
		{"string", true, "common.Hash"},
		{"bytes", true, "common.Hash"},
		{"uint256[]", true, "common.Hash"},
		{"(uint256,uint256)", true, "common.Hash"},
		{"string", false, "string"},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			m := New()
			got, err := m.MapParam(ir.Param{Type: abi.MustParseTypes(tt.typ)[0], Indexed: tt.indexed})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Expr)
			assert.Empty(t, m.Structs(), "hashed tuples need no struct")
		})
	}
}

func TestCollectNamesFailingEntry(t *testing.T) {
	first, err := abi.NewType("tuple", "struct Point", []abi.Component{{Name: "x", Type: "uint256"}})
	require.NoError(t, err)
	second, err := abi.NewType("tuple", "struct Point", []abi.Component{{Name: "y", Type: "uint256"}})
	require.NoError(t, err)

	desc := &ir.InterfaceDescription{
		Functions: []*ir.FunctionDescriptor{
			{Name: "a", Inputs: []ir.Param{{Name: "p", Type: first}}},
			{Name: "b", Outputs: []ir.Param{{Type: second}}},
		},
	}

	_, err = Collect(desc)
	require.Error(t, err)

	var ce *ir.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ir.DuplicateEmittedName, ce.Kind)
	assert.Equal(t, "function b", ce.Entry)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "SafeTransferFrom", GoName("safeTransferFrom"))
	assert.Equal(t, "TokenId", GoName("token_id"))
	assert.Equal(t, "Owner", GoName("_owner"))
	assert.Equal(t, "", GoName("_"))
	assert.Equal(t, "", GoName(""))

	assert.Equal(t, "Amount", FieldName("amount", 0))
	assert.Equal(t, "Field3", FieldName("", 3))

	taken := map[string]bool{}
	assert.Equal(t, "to", ParamName("to", 0, taken))
	assert.Equal(t, "arg1", ParamName("", 1, taken))
	assert.Equal(t, "arg2", ParamName("type", 2, taken), "keywords are replaced")
	assert.Equal(t, "arg3", ParamName("common", 3, taken), "import names are replaced")
	taken["tokenId"] = true
	assert.Equal(t, "arg4", ParamName("tokenId", 4, taken))
	taken["arg5"] = true
	assert.Equal(t, "arg5_", ParamName("", 5, taken))
}
