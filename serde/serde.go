// Package serde provides serialization and deserialization primitives
// to map domain types to and from their wire representation.
package serde

// Serializer is used to serialize a Source type into a Destination type.
type Serializer[Src any, Dst any] interface {
	Serialize(src Src) (Dst, error)
}

// SerializerFunc is a functional implementation of the Serializer interface.
type SerializerFunc[Src any, Dst any] func(src Src) (Dst, error)

// Serialize implements the serde.Serializer interface.
func (fn SerializerFunc[Src, Dst]) Serialize(src Src) (Dst, error) { return fn(src) }

// Deserializer is used to deserialize a Source type from a Destination type.
type Deserializer[Src any, Dst any] interface {
	Deserialize(dst Dst) (Src, error)
}

// DeserializerFunc is a functional implementation of the Deserializer interface.
type DeserializerFunc[Src any, Dst any] func(dst Dst) (Src, error)

// Deserialize implements the serde.Deserializer interface.
func (fn DeserializerFunc[Src, Dst]) Deserialize(dst Dst) (Src, error) { return fn(dst) }

// Serde is used to serialize and deserialize from a Source to a Destination type.
type Serde[Src any, Dst any] interface {
	Serializer[Src, Dst]
	Deserializer[Src, Dst]
}

// Bytes is a Serde implementation using a byte-array as wire format.
type Bytes[Src any] interface {
	Serde[Src, []byte]
}

// Fused provides a convenient way to fuse together different implementations
// of a Serializer and Deserializer, and use it as a Serde.
type Fused[Src any, Dst any] struct {
	Serializer[Src, Dst]
	Deserializer[Src, Dst]
}

// Fuse combines two given Serializer and Deserializer with compatible types
// and returns a Serde implementation through serde.Fused.
func Fuse[Src, Dst any](serializer Serializer[Src, Dst], deserializer Deserializer[Src, Dst]) Fused[Src, Dst] {
	return Fused[Src, Dst]{
		Serializer:   serializer,
		Deserializer: deserializer,
	}
}
