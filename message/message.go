// Package message exposes the generic Message type, used to represent
// a message flowing through the system (e.g. Event, Command, Query).
package message

// Message is a Message payload.
//
// Each payload should have a unique name identifier, that is used
// by dispatchers and codecs to route the message to its type.
type Message interface {
	Name() string
}

// Well-known Metadata keys, populated by the authentication/tenant-context
// collaborator before a message enters the dispatch pipeline.
const (
	TenantIDKey      = "Tenant-Id"
	UserIDKey        = "User-Id"
	CorrelationIDKey = "Correlation-Id"
	CausationIDKey   = "Causation-Id"
	RequestIDKey     = "Request-Id"
)

// Metadata contains data related to a Message that are not functional
// for the Message itself, but provide additional context,
// such as the tenant and the user the Message is being executed for.
type Metadata map[string]string

// With returns a new Metadata reference holding the value addressed using
// the specified key.
func (m Metadata) With(key, value string) Metadata {
	if m == nil {
		m = make(Metadata)
	}

	m[key] = value

	return m
}

// Merge merges the other Metadata provided in input with the current map.
// Returns a pointer to the extended metadata map.
func (m Metadata) Merge(other Metadata) Metadata {
	if m == nil {
		return other
	}

	for k, v := range other {
		m[k] = v
	}

	return m
}

// TenantID returns the tenant identifier recorded in the Metadata,
// or an empty string if none has been set.
func (m Metadata) TenantID() string { return m[TenantIDKey] }

// UserID returns the user identifier recorded in the Metadata,
// or an empty string if none has been set.
func (m Metadata) UserID() string { return m[UserIDKey] }

// CorrelationID returns the correlation identifier recorded in the Metadata,
// or an empty string if none has been set.
func (m Metadata) CorrelationID() string { return m[CorrelationIDKey] }

// GenericEnvelope is an Envelope type that can be used when the concrete
// Message type in the Envelope is not of interest.
type GenericEnvelope Envelope[Message]

// Envelope bundles a Message to be exchanged with optional Metadata support.
type Envelope[T Message] struct {
	Message  T
	Metadata Metadata
}

// ToGenericEnvelope maps the Envelope instance into a GenericEnvelope one.
func (e Envelope[T]) ToGenericEnvelope() GenericEnvelope {
	return GenericEnvelope{
		Message:  e.Message,
		Metadata: e.Metadata,
	}
}
