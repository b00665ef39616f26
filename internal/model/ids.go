// Package model implements the reconciled device/channel/subscription
// domain, kept free of Go reference cycles by representing
// Device/RxChannel/TxChannel/Subscription as four arenas of stable integer
// IDs rather than pointers, per spec.md §9's Design Notes. Grounded on the
// teacher's internal/device.Manager: a mutex-guarded, map-keyed registry
// with load/rebuild-on-demand semantics, adapted from a MAC-identity
// registry to this arena-of-entities one.
package model

// DeviceID, RxID, TxID, and SubID are stable handles into their respective
// arenas. Zero is never a valid ID; the zero value represents "none".
type DeviceID int
type RxID int
type TxID int
type SubID int
