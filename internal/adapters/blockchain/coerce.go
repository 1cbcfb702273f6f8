package blockchain

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// CoerceArgs converts plan values into the Go types abi.Arguments.Pack
// expects for inputs. Integers may be given as *big.Int, Go integers or
// decimal/hex strings; addresses as common.Address or hex; arrays and
// tuples as []any.
func CoerceArgs(inputs abi.Arguments, values []any) ([]any, error) {
	if len(inputs) != len(values) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(values))
	}
	out := make([]any, len(values))
	for i, input := range inputs {
		v, err := Coerce(input.Type, values[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, input.Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

// Coerce converts a single value to t's Go representation
func Coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		return toAddress(v)
	case abi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return b, nil
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return s, nil
	case abi.IntTy, abi.UintTy:
		return toInteger(t, v)
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit bytes%d", len(b), t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		return toSequence(t, v)
	case abi.TupleTy:
		return toTuple(t, v)
	default:
		return nil, fmt.Errorf("unsupported abi type %s", t.String())
	}
}

func toAddress(v any) (common.Address, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case *common.Address:
		return *x, nil
	case string:
		if !common.IsHexAddress(x) {
			return common.Address{}, fmt.Errorf("%q is not an address", x)
		}
		return common.HexToAddress(x), nil
	default:
		return common.Address{}, fmt.Errorf("want address, got %T", v)
	}
}

func toBig(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		return x, nil
	case int:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), nil
	case string:
		b, ok := new(big.Int).SetString(x, 0)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("want integer, got %T", v)
	}
}

func toInteger(t abi.Type, v any) (any, error) {
	b, err := toBig(v)
	if err != nil {
		return nil, err
	}
	if t.T == abi.UintTy && b.Sign() < 0 {
		return nil, fmt.Errorf("%s is negative", b)
	}
	limit, magnitude := t.Size, b
	if t.T == abi.IntTy {
		limit--
		if b.Sign() < 0 {
			// -2^(n-1) is the smallest value that fits
			magnitude = new(big.Int).Sub(new(big.Int).Neg(b), big.NewInt(1))
		}
	}
	if magnitude.BitLen() > limit {
		return nil, fmt.Errorf("%s overflows %s", b, t.String())
	}

	goType := t.GetType()
	if goType == bigIntType {
		return new(big.Int).Set(b), nil
	}
	out := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		out.SetUint(b.Uint64())
	} else {
		out.SetInt(b.Int64())
	}
	return out.Interface(), nil
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case common.Hash:
		return x.Bytes(), nil
	case string:
		if !strings.HasPrefix(x, "0x") {
			return nil, fmt.Errorf("%q is not 0x-prefixed hex", x)
		}
		return hexutil.Decode(x)
	default:
		return nil, fmt.Errorf("want bytes, got %T", v)
	}
}

func items(v any) ([]any, error) {
	if xs, ok := v.([]any); ok {
		return xs, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("want a list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func toSequence(t abi.Type, v any) (any, error) {
	xs, err := items(v)
	if err != nil {
		return nil, err
	}
	if t.T == abi.ArrayTy && len(xs) != t.Size {
		return nil, fmt.Errorf("want %d elements, got %d", t.Size, len(xs))
	}

	var out reflect.Value
	if t.T == abi.SliceTy {
		out = reflect.MakeSlice(t.GetType(), len(xs), len(xs))
	} else {
		out = reflect.New(t.GetType()).Elem()
	}
	for i, x := range xs {
		elem, err := Coerce(*t.Elem, x)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

// toTuple fills the struct type go-ethereum derives for the tuple, field
// by field in declaration order
func toTuple(t abi.Type, v any) (any, error) {
	xs, err := items(v)
	if err != nil {
		return nil, err
	}
	if len(xs) != len(t.TupleElems) {
		return nil, fmt.Errorf("want %d tuple fields, got %d", len(t.TupleElems), len(xs))
	}
	out := reflect.New(t.GetType()).Elem()
	for i, elemType := range t.TupleElems {
		field, err := Coerce(*elemType, xs[i])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
		}
		out.Field(i).Set(reflect.ValueOf(field))
	}
	return out.Interface(), nil
}
