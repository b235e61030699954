/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of Model, and the
models are stored directly in the KVStore under the bucket
prefix.

Sequence keeps a monotonically increasing counter that can
be used to generate unique, ordered identifiers.
*/
package orm
