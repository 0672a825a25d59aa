// Package kernel provides the shared value objects of the marketplace domain.
//
// The package includes:
//   - UUID: identifier of orders and parties
//   - GeoPoint: a validated latitude/longitude pair with great-circle distance
//   - BoundingBox: a conservative rectangular pre-filter around a GeoPoint
//
// Values are immutable and must be created through their constructors; zero
// values fail Validate.
package kernel
