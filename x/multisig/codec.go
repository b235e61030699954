package multisig

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/code"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	RegisterCodec(cdc)
}

// RegisterCodec registers the proposal actions and all messages of this
// package. Applications that serialize multisig messages inside their own
// transaction must register them as well.
func RegisterCodec(c *amino.Codec) {
	c.RegisterInterface((*Action)(nil), nil)
	c.RegisterConcrete(&TransferAction{}, "vault/multisig/TransferAction", nil)
	c.RegisterConcrete(&UpgradeAction{}, "vault/multisig/UpgradeAction", nil)

	c.RegisterConcrete(&InitializeMsg{}, "vault/multisig/InitializeMsg", nil)
	c.RegisterConcrete(&CreateTransferProposalMsg{}, "vault/multisig/CreateTransferProposalMsg", nil)
	c.RegisterConcrete(&CreateUpgradeProposalMsg{}, "vault/multisig/CreateUpgradeProposalMsg", nil)
	c.RegisterConcrete(&SignProposalMsg{}, "vault/multisig/SignProposalMsg", nil)
	c.RegisterConcrete(&ExecuteProposalMsg{}, "vault/multisig/ExecuteProposalMsg", nil)
	c.RegisterConcrete(&RemoveProposalMsg{}, "vault/multisig/RemoveProposalMsg", nil)
}

// Action is what a proposal does once executed. It is either a
// *TransferAction or an *UpgradeAction.
type Action interface {
	Validate() error
}

// TransferAction moves tokens owned by the vault to the recipient.
type TransferAction struct {
	Token     string        `json:"token"`
	Amount    uint64        `json:"amount"`
	Recipient vault.Address `json:"recipient"`
}

// UpgradeAction installs a new code revision.
type UpgradeAction struct {
	CodeID code.CodeID `json:"code_id"`
}

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus int32

const (
	StatusOpen   ProposalStatus = 1
	StatusClosed ProposalStatus = 2
)

func (s ProposalStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config is the immutable vault configuration.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	QuorumBps   uint32 `json:"quorum_bps"`
}

func (c *Config) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Config) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, c), "config")
}

// MemberSet is the ordered list of vault members.
type MemberSet struct {
	Members []vault.Address `json:"members"`
}

func (m *MemberSet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *MemberSet) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "member set")
}

// Proposal is a pending or finished vault action.
type Proposal struct {
	ID          uint64         `json:"id"`
	Sender      vault.Address  `json:"sender"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Action      Action         `json:"action"`
	Status      ProposalStatus `json:"status"`
	CreatedAt   vault.UnixTime `json:"created_at"`
	ExpiresAt   vault.UnixTime `json:"expires_at"`
}

func (p *Proposal) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *Proposal) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, p), "proposal")
}

// SignatureSet holds the members that signed a proposal, in signing order.
type SignatureSet struct {
	Signers []vault.Address `json:"signers"`
}

func (s *SignatureSet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *SignatureSet) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, s), "signature set")
}

// VersionCounter counts executed upgrade proposals.
type VersionCounter struct {
	Value uint64 `json:"value"`
}

func (v *VersionCounter) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(v)
}

func (v *VersionCounter) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, v), "version")
}

// Info is the vault summary returned by the info query.
type Info struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []vault.Address `json:"members"`
	QuorumBps   uint32          `json:"quorum_bps"`
	Version     uint64          `json:"version"`
}

// SignatureStatus tells if a member signed a proposal.
type SignatureStatus struct {
	Member vault.Address `json:"member"`
	Signed bool          `json:"signed"`
}
