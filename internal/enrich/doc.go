// Package enrich queries external intelligence sources about a target
// (domain, email address, or username) and assembles the answers into a
// single TargetProfile.
//
// # Architecture
//
// Every source implements the Adapter interface. Adapters are registered in
// a Registry keyed by the target types they accept; the Aggregator fans a
// query out to every matching adapter concurrently and collects per-adapter
// fields. A failing adapter produces an error field, a keyless one a
// disabled field; neither fails the profile.
//
// Design decision: We wrap adapters with Throttle rather than rate-limiting
// inside each adapter because:
//  1. The token bucket must be shared across concurrent profiles
//  2. Retry/backoff policy is uniform and belongs with the throttle
//  3. Adapters stay plain protocol code, trivially testable
package enrich
