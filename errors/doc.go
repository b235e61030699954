/*
Package errors implements custom error interfaces for the vault application.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary.

x/multisig is a good package to take a look at in terms of usage with
predefined errors with/without formatting.

If you want to register a custom error - use Register(code, description).
For reusing errors - use Errxxx.New and Errxxx.Newf.
Code stands for ABCI error code, which allows to distinguish types of errors
on the client side and act accordingly.

There is also support for stacktraces. Please ensure you create the custom
error using ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
creation to ensure we attach a stacktrace. If you wrap multiple times, we only
record the first wrap with the stacktrace.

An error wrapped with Committed signals the application that the state
changes done before the failure must be persisted.
*/
package errors
