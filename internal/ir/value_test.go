package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysUTF16Order(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 but after it in UTF-16.
	obj := IRObject{
		"\U0001F600": IRInt(1),
		"\uff61":     IRInt(2),
	}
	assert.Equal(t, []string{"\U0001F600", "\uff61"}, obj.SortedKeys())
}

func TestClone_DeepCopy(t *testing.T) {
	orig := IRObject{
		"data": Ints(1, 2, 3),
		"meta": IRObject{"name": IRString("a")},
	}

	cp := Clone(orig).(IRObject)
	cp["data"].(IRArray)[0] = IRInt(99)
	cp["meta"].(IRObject)["name"] = IRString("b")

	assert.Equal(t, IRInt(1), orig["data"].(IRArray)[0], "clone must not alias arrays")
	assert.Equal(t, IRString("a"), orig["meta"].(IRObject)["name"], "clone must not alias objects")
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, Clone(nil))
	assert.Equal(t, IRInt(5), Clone(IRInt(5)))
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "x", IRString("x")},
		{"int", 3, IRInt(3)},
		{"int64", int64(-4), IRInt(-4)},
		{"integral float", float64(7), IRInt(7)},
		{"bool", true, IRBool(true)},
		{"list", []any{1, "a"}, IRArray{IRInt(1), IRString("a")}},
		{"map", map[string]any{"k": 1}, IRObject{"k": IRInt(1)}},
		{"yaml map", map[any]any{"k": false}, IRObject{"k": IRBool(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_RejectsFractions(t *testing.T) {
	_, err := FromAny([]any{1, 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[1]")
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"xs":[1,2],"n":null}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{"xs": Ints(1, 2), "n": IRNull{}}, v)

	_, err = UnmarshalIRValue([]byte(`1.5`))
	assert.Error(t, err)
}
