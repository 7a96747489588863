package hclfile

import (
	"fmt"
	"math"
	"math/big"

	jsoniter "github.com/json-iterator/go"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fromCty converts an evaluated attribute value into plain Go values:
// objects and maps become map[string]any, lists, sets and tuples []any, and
// whole numbers int64.
func fromCty(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		return fromNumber(val.AsBigFloat()), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := fromCty(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := fromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		data, err := ctyjson.Marshal(val, ty)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s value: %w", ty.FriendlyName(), err)
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func fromNumber(bf *big.Float) any {
	if i64, acc := bf.Int64(); acc == big.Exact {
		return i64
	}
	f64, _ := bf.Float64()
	if math.IsInf(f64, 0) {
		return bf.Text('g', -1)
	}
	return f64
}

// toCty converts keyword mappings into a cty object usable as "var".
func toCty(values map[string]any) (cty.Value, error) {
	if len(values) == 0 {
		return cty.EmptyObjectVal, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(data, ty)
}
