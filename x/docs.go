/*
Package x contains some standard extensions

Extensions implement common functionality (Handler, Decorator,
etc.) and can be combined together to construct an application

All sub-packages are various extensions, useful to build
applications, but not necessary to use the framework.
All of them provide functionality commonly needed by a vault.
You are welcome to import them if desired, but if they
don't match your particular needs, you may also write your
own extensions and use them instead.

Follow standard go naming conventions and avoid stutter. Use eg.
`multisig.SignProposalMsg` in place of `multisig.MultisigSignProposalMsg`.
*/
package x
