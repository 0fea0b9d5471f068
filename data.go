package geotess

import (
	"encoding/binary"
	"math"
)

// AttributeType names the primitive element type a Model's Data tuples are
// stored as. A single Model declares exactly one AttributeType for all of
// its Profiles.
type AttributeType int

const (
	AttributeDouble AttributeType = iota
	AttributeFloat
	AttributeLong
	AttributeInt
	AttributeShort
	AttributeByte
)

// byteWidth returns the on-disk width, in bytes, of one element of this type.
func (t AttributeType) byteWidth() int {
	switch t {
	case AttributeDouble, AttributeLong:
		return 8
	case AttributeFloat, AttributeInt:
		return 4
	case AttributeShort:
		return 2
	case AttributeByte:
		return 1
	default:
		return 8
	}
}

// missingInt returns the sentinel "missing" value for integer types, the
// minimum representable value of the declared width.
func (t AttributeType) missingInt() int64 {
	switch t {
	case AttributeLong:
		return math.MinInt64
	case AttributeInt:
		return math.MinInt32
	case AttributeShort:
		return math.MinInt16
	case AttributeByte:
		return math.MinInt8
	default:
		return math.MinInt64
	}
}

// Data holds one attribute tuple (Na values, all of the Model's declared
// AttributeType) for a single radial node. It stores a fixed-width byte
// buffer rather than an interface{} slice so the query hot path never pays
// for polymorphic dispatch: the declared type is uniform for one Model, so a
// single typed accessor path serves every node.
type Data struct {
	typ    AttributeType
	raw    []byte
	nattrs int
}

// NewData allocates a Data tuple of n attributes of the given type, with all
// values set to "missing" (NaN for floating types, the type's minimum value
// for integer types).
func NewData(typ AttributeType, n int) Data {
	d := Data{typ: typ, nattrs: n, raw: make([]byte, n*typ.byteWidth())}
	for i := 0; i < n; i++ {
		d.setMissing(i)
	}
	return d
}

func (d *Data) setMissing(i int) {
	switch d.typ {
	case AttributeDouble:
		d.putUint64(i, math.Float64bits(math.NaN()))
	case AttributeFloat:
		d.putUint32(i, math.Float32bits(float32(math.NaN())))
	case AttributeLong:
		d.putUint64(i, uint64(d.typ.missingInt()))
	case AttributeInt:
		d.putUint32(i, uint32(int32(d.typ.missingInt())))
	case AttributeShort:
		d.raw[i*2], d.raw[i*2+1] = byte(int16(d.typ.missingInt())), byte(int16(d.typ.missingInt())>>8)
	case AttributeByte:
		d.raw[i] = byte(int8(d.typ.missingInt()))
	}
}

func (d *Data) putUint64(i int, v uint64) {
	binary.LittleEndian.PutUint64(d.raw[i*8:], v)
}

func (d *Data) putUint32(i int, v uint32) {
	binary.LittleEndian.PutUint32(d.raw[i*4:], v)
}

// NumAttributes returns the number of attribute values in this tuple.
func (d Data) NumAttributes() int { return d.nattrs }

// Type returns the tuple's declared primitive type.
func (d Data) Type() AttributeType { return d.typ }

// AsDouble converts attribute i to float64. NaN (float types) or the type's
// missing sentinel (integer types, converted to NaN) indicate "missing".
func (d Data) AsDouble(i int) float64 {
	switch d.typ {
	case AttributeDouble:
		return math.Float64frombits(binary.LittleEndian.Uint64(d.raw[i*8:]))
	case AttributeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(d.raw[i*4:])))
	case AttributeLong:
		v := int64(binary.LittleEndian.Uint64(d.raw[i*8:]))
		if v == d.typ.missingInt() {
			return math.NaN()
		}
		return float64(v)
	case AttributeInt:
		v := int32(binary.LittleEndian.Uint32(d.raw[i*4:]))
		if int64(v) == d.typ.missingInt() {
			return math.NaN()
		}
		return float64(v)
	case AttributeShort:
		v := int16(uint16(d.raw[i*2]) | uint16(d.raw[i*2+1])<<8)
		if int64(v) == d.typ.missingInt() {
			return math.NaN()
		}
		return float64(v)
	case AttributeByte:
		v := int8(d.raw[i])
		if int64(v) == d.typ.missingInt() {
			return math.NaN()
		}
		return float64(v)
	default:
		return math.NaN()
	}
}

// SetDouble sets attribute i from a float64, converting to the tuple's
// declared type. math.NaN() sets the value to "missing".
func (d *Data) SetDouble(i int, x float64) {
	switch d.typ {
	case AttributeDouble:
		d.putUint64(i, math.Float64bits(x))
	case AttributeFloat:
		d.putUint32(i, math.Float32bits(float32(x)))
	case AttributeLong:
		if math.IsNaN(x) {
			d.putUint64(i, uint64(d.typ.missingInt()))
			return
		}
		d.putUint64(i, uint64(int64(x)))
	case AttributeInt:
		if math.IsNaN(x) {
			d.putUint32(i, uint32(int32(d.typ.missingInt())))
			return
		}
		d.putUint32(i, uint32(int32(x)))
	case AttributeShort:
		var v int16
		if math.IsNaN(x) {
			v = int16(d.typ.missingInt())
		} else {
			v = int16(x)
		}
		d.raw[i*2], d.raw[i*2+1] = byte(v), byte(uint16(v)>>8)
	case AttributeByte:
		var v int8
		if math.IsNaN(x) {
			v = int8(d.typ.missingInt())
		} else {
			v = int8(x)
		}
		d.raw[i] = byte(v)
	}
}

// Bytes returns the tuple's raw fixed-width encoding, used by the binary I/O
// module to write a flat Data array without per-value dispatch.
func (d Data) Bytes() []byte { return d.raw }

// DataFromBytes reconstructs a Data tuple of n attributes of the given type
// from its raw fixed-width encoding.
func DataFromBytes(typ AttributeType, n int, raw []byte) Data {
	buf := make([]byte, n*typ.byteWidth())
	copy(buf, raw)
	return Data{typ: typ, nattrs: n, raw: buf}
}

// Equal reports whether two tuples are equal: bit-exact for floating types,
// exactly equal for integer types, per the Model equality contract.
func (d Data) Equal(o Data) bool {
	if d.typ != o.typ || d.nattrs != o.nattrs {
		return false
	}
	for i := range d.raw {
		if d.raw[i] != o.raw[i] {
			return false
		}
	}
	return true
}
