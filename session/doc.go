// Package session owns persistence of the authenticated session across two
// key-value storage tiers: an ephemeral tier scoped to the current process,
// and a durable tier that survives restarts and is populated only when the
// user opts in ("remember me").
//
// # Architecture boundaries
//
// [Store] is the sole writer on both tiers. Other packages receive session
// data only through its read operations; nothing else touches a [Tier]
// directly. This keeps the mirroring invariant intact: the durable tier
// either fully mirrors the ephemeral session or is fully empty, never a
// partial copy.
//
// # What this package must NOT do
//
//   - Perform network calls against the planner service.
//   - Validate token signatures or expiry. [InspectAccessToken] decodes
//     claims for display only; token validity is discovered reactively when
//     the service rejects a request.
//   - Grant access on corrupt state. An unparseable record is cleared and
//     treated as no session at all.
package session
