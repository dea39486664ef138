package resp

import (
	"strconv"
)

// Append serializes v onto dst in RESP wire format and returns the
// extended slice. Serialization is infallible for any Value built through
// the constructors in this package.
func Append(dst []byte, v Value) []byte {
	switch v.Type {
	case SimpleString:
		dst = append(dst, byte(SimpleString))
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case Error:
		dst = append(dst, byte(Error))
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case Integer:
		dst = append(dst, byte(Integer))
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, '\r', '\n')
	case BulkString:
		dst = append(dst, byte(BulkString))
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Bulk...)
		return append(dst, '\r', '\n')
	case Null:
		return append(dst, '$', '-', '1', '\r', '\n')
	case Array:
		dst = append(dst, byte(Array))
		dst = strconv.AppendInt(dst, int64(len(v.Arr)), 10)
		dst = append(dst, '\r', '\n')
		for _, elem := range v.Arr {
			dst = Append(dst, elem)
		}
		return dst
	default:
		return dst
	}
}

// Serialize is a convenience wrapper around Append for a single value.
func Serialize(v Value) []byte {
	return Append(make([]byte, 0, 64), v)
}
