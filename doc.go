// Package relayed contains types and abstractions to build reliable,
// event-driven applications: Command and Query dispatch, Event-sourced
// Aggregates and a transactional Outbox/Inbox pair for exactly-once-effect
// messaging between services.
//
// The library contains multiple packages. You might want to start from
// `aggregate` to implement your Aggregate types, and `command` to implement
// the Command Handlers to interact with or update your Aggregates.
//
// `query` allows you to implement Domain Queries and Read Models, while
// `pipeline` wraps both dispatchers with validation, authorization, audit
// and metrics middleware.
//
// `outbox`, `inbox` and `poller` implement the reliable-messaging side:
// Integration Events staged transactionally with your aggregate writes,
// drained to a broker in the background, and deduplicated on the consumer.
//
// `postgres` and `kafka` provide the production implementations of the
// storage and transport contracts.
package relayed
