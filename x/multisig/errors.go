package multisig

import "github.com/iov-one/vault/errors"

// Vault errors. Codes are in the 1100 range reserved for this extension.
var (
	ErrAlreadyInitialized      = errors.Register(1101, "vault already initialized")
	ErrInitializeTooLowQuorum  = errors.Register(1102, "quorum too low")
	ErrInitializeTooHighQuorum = errors.Register(1103, "quorum too high")
	ErrUnauthorizedNotAMember  = errors.Register(1104, "not a vault member")
	ErrTitleTooLong            = errors.Register(1105, "title too long")
	ErrDescriptionTooLong      = errors.Register(1106, "description too long")
	ErrProposalClosed          = errors.Register(1107, "proposal closed")
	ErrQuorumNotReached        = errors.Register(1108, "quorum not reached")
	ErrProposalNotFound        = errors.Register(1109, "proposal not found")
	ErrProposalExpired         = errors.Register(1110, "proposal expired")
	ErrInvalidExpirationDate   = errors.Register(1111, "invalid expiration date")
	ErrMembersListEmpty        = errors.Register(1112, "members list empty")
	ErrZeroAddressProvided     = errors.Register(1113, "zero address provided")
)
