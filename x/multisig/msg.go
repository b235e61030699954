package multisig

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/code"
)

const (
	pathInitialize     = "multisig/initialize"
	pathCreateTransfer = "multisig/create_transfer"
	pathCreateUpgrade  = "multisig/create_upgrade"
	pathSign           = "multisig/sign"
	pathExecute        = "multisig/execute"
	pathRemove         = "multisig/remove"
)

var (
	_ vault.Msg = (*InitializeMsg)(nil)
	_ vault.Msg = (*CreateTransferProposalMsg)(nil)
	_ vault.Msg = (*CreateUpgradeProposalMsg)(nil)
	_ vault.Msg = (*SignProposalMsg)(nil)
	_ vault.Msg = (*ExecuteProposalMsg)(nil)
	_ vault.Msg = (*RemoveProposalMsg)(nil)
)

// InitializeMsg configures the vault. Zero quorum selects DefaultQuorumBps.
type InitializeMsg struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []vault.Address `json:"members"`
	QuorumBps   uint32          `json:"quorum_bps,omitempty"`
}

func (InitializeMsg) Path() string {
	return pathInitialize
}

func (m *InitializeMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *InitializeMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "initialize msg")
}

func (m *InitializeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Name", validateName(m.Name))
	errs = errors.AppendField(errs, "Description", validateDescription(m.Description))
	errs = errors.AppendField(errs, "Members", validateMembers(m.Members))
	errs = errors.AppendField(errs, "QuorumBps", validateQuorum(resolveQuorum(m.QuorumBps)))
	return errs
}

// CreateTransferProposalMsg proposes to send Amount of Token from the vault
// to the Recipient. Expiration is the proposal lifetime in seconds, zero
// selects DefaultExpiration.
type CreateTransferProposalMsg struct {
	Sender      vault.Address `json:"sender"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Recipient   vault.Address `json:"recipient"`
	Amount      uint64        `json:"amount"`
	Token       string        `json:"token"`
	Expiration  uint64        `json:"expiration,omitempty"`
}

func (CreateTransferProposalMsg) Path() string {
	return pathCreateTransfer
}

func (m *CreateTransferProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateTransferProposalMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "create transfer proposal msg")
}

func (m *CreateTransferProposalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "Title", validateTitle(m.Title))
	errs = errors.AppendField(errs, "Description", validateDescription(m.Description))
	action := TransferAction{Token: m.Token, Amount: m.Amount, Recipient: m.Recipient}
	errs = errors.Append(errs, action.Validate())
	return errs
}

// CreateUpgradeProposalMsg proposes to install the code identified by
// CodeID. Expiration works as for the transfer proposal.
type CreateUpgradeProposalMsg struct {
	Sender     vault.Address `json:"sender"`
	CodeID     code.CodeID   `json:"code_id"`
	Expiration uint64        `json:"expiration,omitempty"`
}

func (CreateUpgradeProposalMsg) Path() string {
	return pathCreateUpgrade
}

func (m *CreateUpgradeProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *CreateUpgradeProposalMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "create upgrade proposal msg")
}

func (m *CreateUpgradeProposalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Sender", m.Sender.Validate())
	errs = errors.AppendField(errs, "CodeID", m.CodeID.Validate())
	return errs
}

// SignProposalMsg adds the sender signature to a proposal.
type SignProposalMsg struct {
	Sender     vault.Address `json:"sender"`
	ProposalID uint64        `json:"proposal_id"`
}

func (SignProposalMsg) Path() string {
	return pathSign
}

func (m *SignProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *SignProposalMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "sign proposal msg")
}

func (m *SignProposalMsg) Validate() error {
	return validateProposalRef(m.Sender, m.ProposalID)
}

// ExecuteProposalMsg executes a proposal that reached the quorum.
type ExecuteProposalMsg struct {
	Sender     vault.Address `json:"sender"`
	ProposalID uint64        `json:"proposal_id"`
}

func (ExecuteProposalMsg) Path() string {
	return pathExecute
}

func (m *ExecuteProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *ExecuteProposalMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "execute proposal msg")
}

func (m *ExecuteProposalMsg) Validate() error {
	return validateProposalRef(m.Sender, m.ProposalID)
}

// RemoveProposalMsg deletes a proposal created by the sender.
type RemoveProposalMsg struct {
	Sender     vault.Address `json:"sender"`
	ProposalID uint64        `json:"proposal_id"`
}

func (RemoveProposalMsg) Path() string {
	return pathRemove
}

func (m *RemoveProposalMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *RemoveProposalMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "remove proposal msg")
}

func (m *RemoveProposalMsg) Validate() error {
	return validateProposalRef(m.Sender, m.ProposalID)
}

func validateProposalRef(sender vault.Address, id uint64) error {
	var errs error
	errs = errors.AppendField(errs, "Sender", sender.Validate())
	if id == 0 {
		errs = errors.AppendField(errs, "ProposalID", errors.Wrap(errors.ErrInput, "ids start with 1"))
	}
	return errs
}
