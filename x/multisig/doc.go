/*
Package multisig implements a vault controlled by a fixed group of members.

The vault is initialized once with a member set and a quorum expressed in
basis points. Members create proposals to either transfer tokens owned by the
vault or to install a new code revision. Other members sign the proposal and
once enough signatures are collected any member can execute it before the
proposal expires.

	initialize -> create proposal -> sign (repeat) -> execute

A proposal is either Open or Closed. Closed is terminal: a proposal is closed
after a successful execution or when an execution is attempted after its
expiration time. The latter closes the proposal and returns ErrProposalExpired
marked as committed so the state change is kept.

Token transfers and code installation are delegated to the TokenMover and
CodeInstaller collaborators (usually x/cash and x/code).
*/
package multisig
