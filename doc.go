// Package etfflow turns daily net capital flows of US spot BTC/ETH ETFs into
// Discord notifications. The upstream analytics API has no stable response
// schema across versions and vendors, so the heart of the package is a
// shape-tolerant extraction layer rather than a fixed binding:
//
//   - Numeric Coercion: reads a net flow out of whatever encoding the vendor
//     chose (commas, accounting parentheses, "b"/"m" suffixes), degrading to
//     zero instead of failing.
//   - Payload Normalizer: recursively walks the response tree probing ordered
//     candidate keys to locate per-day groups of per-fund flow records, and
//     merges groups discovered on independent branches.
//   - Dedup and quota state: a small persisted blob remembering the last
//     notified day per asset and the rolling monthly upstream-call budget.
//   - Notification assembly: a pure function from flow records to a colored,
//     field-per-fund message body.
//
// The sosovalue package owns the upstream client (credential modes, retries,
// the history feed used to confirm that a day's figure is final), discord the
// outbound webhook, and cmd the `efs` command-line tool built on top.
package etfflow
