// Package services provides the domain services of the order engine that span
// more than one aggregate.
//
// The package includes:
//   - ProximityIndex: parties of a role near a point, nearest first, as a lazy sequence
//   - OrderMatcher: the inverted search, orders open for a role near a party
//   - RoleDispatcher: picks the candidates an open assignment window is offered to
//   - Nearest: the shared great-circle ranking used by all of the above
//
// Sources are narrow interfaces satisfied by the storage adapters; the
// services themselves hold no state and are safe for concurrent use.
package services
