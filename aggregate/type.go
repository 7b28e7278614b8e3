package aggregate

// Type represents the type of an Aggregate, which exposes the
// name of the Aggregate (used as Event Stream type identifier).
//
// If your Aggregate implementation uses pointers, use the Factory to
// return a non-nil instance of the type.
type Type[I ID, T Root[I]] struct {
	Name    string
	Factory func() T
}
