package syntax

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ValueToGo converts an evaluated cty value into a plain Go value
// suitable for the manifest's rule attribute maps and for JSON
// encoding: strings, bools, int64/float64, []any and map[string]any.
func ValueToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value of type %s is not known", val.Type().FriendlyName())
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		return numberToGo(val.AsBigFloat()), nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			conv, err := ValueToGo(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, conv)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			conv, err := ValueToGo(elem)
			if err != nil {
				return nil, err
			}
			out[key.AsString()] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot represent value of type %s", ty.FriendlyName())
	}
}

func numberToGo(f *big.Float) any {
	if i, acc := f.Int64(); acc == big.Exact {
		return i
	}
	out, _ := f.Float64()
	return out
}
