// Package capture turns response bodies into field lookups and carries
// selected fields forward into the scenario variable store.
//
// ParseJSON never fails from the caller's point of view: a body that is
// not a JSON object yields the empty mapping together with the reason.
// Propagate copies fields such as payment_id, mandate_id and
// client_secret into the store so later steps can use them via the
// {{payment_id}} syntax.
package capture
