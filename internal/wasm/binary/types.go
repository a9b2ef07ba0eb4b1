package binary

import (
	"fmt"

	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

const (
	functionTypeTag = 0x60
	arrayTypeTag    = 0x5e
	structTypeTag   = 0x5f
)

func decodeValueType(c *cursor, features wasm.Features) (wasm.ValueType, error) {
	start := c.offset()
	b, err := c.readByte()
	if err != nil {
		return 0, err
	}
	return decodeValueTypeByte(c, features, b, start)
}

func decodeValueTypeByte(c *cursor, features wasm.Features, b byte, start uint32) (wasm.ValueType, error) {
	switch wasm.ValueType(b) {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64:
		return wasm.ValueType(b), nil
	case wasm.ValueTypeV128:
		if err := features.Require(wasm.FeatureSIMD); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadValueType, err)
		}
		return wasm.ValueTypeV128, nil
	case wasm.ValueTypeFuncref, wasm.ValueTypeExternref:
		if err := features.Require(wasm.FeatureReferenceTypes); err != nil && b != byte(wasm.ValueTypeFuncref) {
			return 0, fmt.Errorf("%w: %v", ErrBadValueType, err)
		}
		return wasm.ValueType(b), nil
	default:
		return 0, fmt.Errorf("%w: %#x at %s", ErrBadValueType, b, c.rangeFrom(start))
	}
}

func decodeHeapType(c *cursor) (wasm.HeapType, error) {
	start := c.offset()
	v, err := c.vs33()
	if err != nil {
		return wasm.HeapType{}, err
	}
	switch v {
	case -0x10:
		return wasm.HeapType{Kind: wasm.HeapKindFunc}, nil
	case -0x11:
		return wasm.HeapType{Kind: wasm.HeapKindExtern}, nil
	case -0x18:
		return wasm.HeapType{Kind: wasm.HeapKindExn}, nil
	case -0x13:
		return wasm.HeapType{Kind: wasm.HeapKindEq}, nil
	case -0x16:
		return wasm.HeapType{Kind: wasm.HeapKindI31}, nil
	case -0x12:
		return wasm.HeapType{Kind: wasm.HeapKindAny}, nil
	}
	if v < 0 {
		return wasm.HeapType{}, fmt.Errorf("%w: unknown heap type at %s", ErrBadValueType, c.rangeFrom(start))
	}
	return wasm.HeapType{Kind: wasm.HeapKindTypeIndex, Index: wasm.Index(v)}, nil
}

// decodeRefType accepts only the one-byte shorthands (0x70 funcref, 0x6f
// externref), which share the leading byte space of ValueType. The two-byte
// (0x6b/0x6c prefix + heap type) general form is not decoded: any other
// byte is reported as ErrBadValueType.
func decodeRefType(c *cursor, features wasm.Features) (wasm.RefType, error) {
	start := c.offset()
	b, err := c.readByte()
	if err != nil {
		return wasm.RefType{}, err
	}
	switch wasm.ValueType(b) {
	case wasm.ValueTypeFuncref:
		return wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindFunc}}, nil
	case wasm.ValueTypeExternref:
		if err := features.Require(wasm.FeatureReferenceTypes); err != nil {
			return wasm.RefType{}, fmt.Errorf("%w: %v", ErrBadValueType, err)
		}
		return wasm.RefType{Nullable: true, Heap: wasm.HeapType{Kind: wasm.HeapKindExtern}}, nil
	}
	return wasm.RefType{}, fmt.Errorf("%w: %#x at %s", ErrBadValueType, b, c.rangeFrom(start))
}

func decodeLimits(c *cursor) (wasm.Limits, error) {
	flags, err := c.readByte()
	if err != nil {
		return wasm.Limits{}, err
	}
	min, err := c.vu32()
	if err != nil {
		return wasm.Limits{}, err
	}
	l := wasm.Limits{Min: min}
	if flags&0x1 != 0 {
		max, err := c.vu32()
		if err != nil {
			return wasm.Limits{}, err
		}
		l.Max = &max
	}
	return l, nil
}

func decodeTableType(c *cursor, features wasm.Features) (*wasm.TableType, error) {
	elem, err := decodeRefType(c, features)
	if err != nil {
		return nil, err
	}
	limits, err := decodeLimits(c)
	if err != nil {
		return nil, err
	}
	return &wasm.TableType{ElemType: elem, Limits: limits}, nil
}

func decodeMemoryType(c *cursor) (*wasm.MemoryType, error) {
	limits, err := decodeLimits(c)
	if err != nil {
		return nil, err
	}
	return &wasm.MemoryType{Limits: limits}, nil
}

func decodeMutability(c *cursor) (bool, error) {
	b, err := c.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %#x", ErrBadMutability, b)
	}
}

func decodeGlobalType(c *cursor, features wasm.Features) (*wasm.GlobalType, error) {
	vt, err := decodeValueType(c, features)
	if err != nil {
		return nil, err
	}
	mut, err := decodeMutability(c)
	if err != nil {
		return nil, err
	}
	return &wasm.GlobalType{ValType: vt, Mutable: mut}, nil
}

func decodeFunctionTypeBody(c *cursor, features wasm.Features, start uint32, sink *wasm.Sink) (*wasm.FunctionType, error) {
	params, err := decodeVector(c, sink, "params", func(c *cursor) (wasm.ValueType, error) { return decodeValueType(c, features) })
	if err != nil {
		return nil, err
	}
	results, err := decodeVector(c, sink, "results", func(c *cursor) (wasm.ValueType, error) { return decodeValueType(c, features) })
	if err != nil {
		return nil, err
	}
	return &wasm.FunctionType{Params: params, Results: results, Loc: c.rangeFrom(start)}, nil
}

// decodeFieldType reads a storage type (a plain ValueType, or one of the
// packed i8/i16 byte codes) followed by a mutability byte.
func decodeFieldType(c *cursor, features wasm.Features) (wasm.FieldType, error) {
	start := c.offset()
	b, err := c.readByte()
	if err != nil {
		return wasm.FieldType{}, err
	}
	var ft wasm.FieldType
	switch wasm.ValueType(b) {
	case wasm.PackedTypeI8, wasm.PackedTypeI16:
		ft.Type, ft.Packed = wasm.ValueType(b), true
	default:
		vt, err := decodeValueTypeByte(c, features, b, start)
		if err != nil {
			return wasm.FieldType{}, fmt.Errorf("%w: bad storage type at %s", ErrBadValueType, c.rangeFrom(start))
		}
		ft.Type = vt
	}
	mut, err := decodeMutability(c)
	if err != nil {
		return wasm.FieldType{}, err
	}
	ft.Mutable = mut
	return ft, nil
}

func decodeStructType(c *cursor, features wasm.Features, start uint32, sink *wasm.Sink) (*wasm.StructType, error) {
	fields, err := decodeVector(c, sink, "fields", func(c *cursor) (wasm.FieldType, error) { return decodeFieldType(c, features) })
	if err != nil {
		return nil, err
	}
	return &wasm.StructType{Fields: fields, Loc: c.rangeFrom(start)}, nil
}

func decodeArrayType(c *cursor, features wasm.Features, start uint32) (*wasm.ArrayType, error) {
	field, err := decodeFieldType(c, features)
	if err != nil {
		return nil, err
	}
	return &wasm.ArrayType{Element: field, Loc: c.rangeFrom(start)}, nil
}

// decodeTypeDef dispatches on the leading composite-type tag: 0x60 is the
// MVP function type every proposal shares; 0x5e (array) and 0x5f (struct)
// are the GC proposal's additions to the same type index space.
func decodeTypeDef(c *cursor, features wasm.Features, sink *wasm.Sink) (*wasm.TypeDef, error) {
	start := c.offset()
	tag, err := c.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case functionTypeTag:
		ft, err := decodeFunctionTypeBody(c, features, start, sink)
		if err != nil {
			return nil, err
		}
		return &wasm.TypeDef{Kind: wasm.TypeDefFunc, Func: ft}, nil
	case arrayTypeTag, structTypeTag:
		if ferr := features.Require(wasm.FeatureGC); ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeatureDisabled, ferr)
		}
		if tag == arrayTypeTag {
			at, err := decodeArrayType(c, features, start)
			if err != nil {
				return nil, err
			}
			return &wasm.TypeDef{Kind: wasm.TypeDefArray, Array: at}, nil
		}
		st, err := decodeStructType(c, features, start, sink)
		if err != nil {
			return nil, err
		}
		return &wasm.TypeDef{Kind: wasm.TypeDefStruct, Struct: st}, nil
	default:
		return nil, fmt.Errorf("%w: expected a composite type tag (0x60/0x5e/0x5f), got %#x", ErrBadSection, tag)
	}
}

func decodeTypeSection(payload []byte, features wasm.Features, sink *wasm.Sink) ([]*wasm.TypeDef, error) {
	c := newCursor(payload)
	types, err := decodeVector(c, sink, "types", func(c *cursor) (*wasm.TypeDef, error) {
		return decodeTypeDef(c, features, sink)
	})
	if err != nil {
		sink.Report(c.rangeFrom(c.offset()), "%v", err)
	}
	return types, err
}

// decodeBlockType handles the three-way LEB33 encoding: -0x40 is void, any
// other negative value is a one-byte value type reinterpreted, and any
// non-negative value is a type-section index (multi-value proposal).
func decodeBlockType(c *cursor, features wasm.Features) (wasm.BlockType, error) {
	start := c.offset()
	v, err := c.vs33()
	if err != nil {
		return wasm.BlockType{}, err
	}
	if v == -0x40 {
		return wasm.BlockType{Kind: wasm.BlockTypeVoid}, nil
	}
	if v < 0 {
		vt := wasm.ValueType(v & 0x7f)
		if !vt.IsNumeric() && vt != wasm.ValueTypeFuncref && vt != wasm.ValueTypeExternref {
			return wasm.BlockType{}, fmt.Errorf("%w: bad inline block type at %s", ErrBadValueType, c.rangeFrom(start))
		}
		return wasm.BlockType{Kind: wasm.BlockTypeValue, ValueType: vt}, nil
	}
	if err := features.Require(wasm.FeatureMultiValue); err != nil {
		return wasm.BlockType{}, fmt.Errorf("%w: %v", ErrFeatureDisabled, err)
	}
	return wasm.BlockType{Kind: wasm.BlockTypeFuncType, TypeIndex: wasm.Index(v)}, nil
}
