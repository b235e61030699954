/*
Package vault defines the interfaces shared by every part of the vault
application: storage, transactions, messages, handlers and the request
context. Extensions live under x/ and only talk to each other through the
types declared here.

The request context is a plain context.Context. Values are attached with a
pair of functions for every value of type T that we want to support:

  WithXYZ(Context, T) Context
  XYZ(Context) (val T, err error)

Block time is the only notion of "now" an extension may use. Reading the wall
clock from inside a handler breaks deterministic replay.
*/
package vault
