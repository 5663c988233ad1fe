package veil

// Cloner allows types to provide their own deep copy logic. When the masked
// type implements Cloner, Mask uses Clone instead of the configured Copier.
//
// The Clone method must return a deep copy where modifications to the clone
// do not affect the original value. For types containing pointers, slices,
// or maps, ensure these are also copied to achieve true isolation.
//
// For simple value types with no reference fields, Clone can return the
// receiver value:
//
//	func (u User) Clone() User { return u }
//
// For types with reference fields, ensure deep copying:
//
//	func (o Order) Clone() Order {
//	    items := make([]Item, len(o.Items))
//	    copy(items, o.Items)
//	    return Order{ID: o.ID, Items: items}
//	}
type Cloner[T any] interface {
	Clone() T
}

// Copier produces isolated deep copies for the masking pass. The default is
// a codec round trip; replace it with WithCopier when the codec cannot
// represent the type faithfully.
type Copier interface {
	// Copy writes a deep copy of src into dst, a pointer to a zero value of
	// src's type.
	Copy(src, dst any) error
}

// codecCopier deep copies by round-tripping through a Codec.
type codecCopier struct {
	codec Codec
}

// CodecCopier returns a Copier that deep copies values by marshaling and
// unmarshaling through codec. Concrete types survive the trip because dst
// is pre-allocated with src's type. Fields the codec does not encode,
// unexported fields included, do not survive it; give such types a Clone
// method or a custom Copier instead.
func CodecCopier(codec Codec) Copier {
	return &codecCopier{codec: codec}
}

func (c *codecCopier) Copy(src, dst any) error {
	data, err := c.codec.Marshal(src)
	if err != nil {
		return newCodecError(ErrMarshal, err)
	}
	if err := c.codec.Unmarshal(data, dst); err != nil {
		return newCodecError(ErrUnmarshal, err)
	}
	return nil
}
