package engine

import (
	"fmt"
	"math/big"

	"github.com/llir/llvm/ir/types"
)

// FloatPrecision is the mantissa precision of fp128, in bits
const FloatPrecision = 113

// Kind identifies what a GenericValue holds
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "double"
	case KindPointer:
		return "pointer"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// GenericValue is a runtime value of the interpreted program. Integers and
// comparison flags use Int; doubles use Float.
type GenericValue struct {
	Kind  Kind
	Int   int64
	Float *big.Float

	ref *GenericValue
}

// IntValue wraps an integer
func IntValue(v int64) GenericValue {
	return GenericValue{Kind: KindInt, Int: v}
}

// FloatValue wraps a double
func FloatValue(v float64) GenericValue {
	return GenericValue{Kind: KindFloat, Float: newFloat().SetFloat64(v)}
}

// Float64 returns the double as a float64, rounding to the nearest value
func (v GenericValue) Float64() float64 {
	if v.Float == nil {
		return 0
	}
	f, _ := v.Float.Float64()
	return f
}

func (v GenericValue) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		if v.Float == nil {
			return "0"
		}
		return v.Float.Text('g', 17)
	case KindPointer:
		return "ptr"
	}
	return "void"
}

func newFloat() *big.Float {
	return new(big.Float).SetPrec(FloatPrecision)
}

// zeroOf returns the zero value stored in a fresh slot of type t
func zeroOf(t types.Type) GenericValue {
	switch t.(type) {
	case *types.IntType:
		return GenericValue{Kind: KindInt}
	case *types.FloatType:
		return GenericValue{Kind: KindFloat, Float: newFloat()}
	case *types.PointerType:
		return GenericValue{Kind: KindPointer}
	}
	return GenericValue{Kind: KindVoid}
}
