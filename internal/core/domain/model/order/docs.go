// Package order provides the Order aggregate of the marketplace: the order
// root, its line items, the fulfillment state machine and the transition log.
//
// The package includes:
//   - Order: the aggregate root; all changes go through event methods
//   - Item: a line item snapshotted from the catalog at checkout
//   - Status and Event: the state machine driving fulfillment
//   - Type, DeliveryType, PaymentStatus: classification enums
//   - Number: the human readable, globally unique order number
//   - Snapshot: the persisted form used by storage adapters
//
// Key business rules:
//   - Orders are created in Pending from a non-empty cart; buyer and seller differ
//   - Pending -> Confirmed -> Preparing -> InTransit|ReadyForPickup -> Delivered -> Completed
//   - Cancel is allowed until the order is Completed; Completed and Cancelled are terminal
//   - Courier and broker slots are filled once, by the first acceptor
//   - The order is re-priced whenever a slot is filled
package order
