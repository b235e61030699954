package multisig

import (
	"strconv"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes registers handlers for all vault messages.
func RegisterRoutes(r vault.Registry, k *Keeper) {
	r.Handle(InitializeMsg{}.Path(), InitializeHandler{k: k})
	r.Handle(CreateTransferProposalMsg{}.Path(), CreateTransferProposalHandler{k: k})
	r.Handle(CreateUpgradeProposalMsg{}.Path(), CreateUpgradeProposalHandler{k: k})
	r.Handle(SignProposalMsg{}.Path(), SignProposalHandler{k: k})
	r.Handle(ExecuteProposalMsg{}.Path(), ExecuteProposalHandler{k: k})
	r.Handle(RemoveProposalMsg{}.Path(), RemoveProposalHandler{k: k})
}

// eventTags builds the tags indexing a vault transaction.
func eventTags(action string, id uint64, sender vault.Address) []common.KVPair {
	tags := []common.KVPair{
		{Key: []byte("multisig.action"), Value: []byte(action)},
	}
	if id != 0 {
		tags = append(tags, common.KVPair{Key: []byte("multisig.proposal"), Value: []byte(strconv.FormatUint(id, 10))})
	}
	if sender != nil {
		tags = append(tags, common.KVPair{Key: []byte("multisig.sender"), Value: []byte(sender.String())})
	}
	return tags
}

// InitializeHandler configures the vault. Anyone can send the message, only
// the first one succeeds.
type InitializeHandler struct {
	k *Keeper
}

var _ vault.Handler = InitializeHandler{}

func (h InitializeHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, err := h.validate(db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h InitializeHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, err := h.validate(db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.k.Initialize(ctx, db, msg.Name, msg.Description, msg.Members, msg.QuorumBps); err != nil {
		return nil, err
	}
	return &vault.DeliverResult{Tags: eventTags("initialize", 0, nil)}, nil
}

func (h InitializeHandler) validate(db vault.KVStore, tx vault.Tx) (*InitializeMsg, error) {
	var msg InitializeMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	ok, err := h.k.IsInitialized(db)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, errors.Wrap(ErrAlreadyInitialized, "cannot initialize twice")
	}
	return &msg, nil
}

// CreateTransferProposalHandler creates token transfer proposals.
type CreateTransferProposalHandler struct {
	k *Keeper
}

var _ vault.Handler = CreateTransferProposalHandler{}

func (h CreateTransferProposalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	var msg CreateTransferProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.k.authorizeMember(ctx, db, msg.Sender); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h CreateTransferProposalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	var msg CreateTransferProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	id, err := h.k.CreateTransferProposal(ctx, db, msg.Sender, msg.Title, msg.Description,
		msg.Recipient, msg.Amount, msg.Token, msg.Expiration)
	if err != nil {
		return nil, err
	}
	return &vault.DeliverResult{
		Data: ProposalKey(id),
		Tags: eventTags("create", id, msg.Sender),
	}, nil
}

// CreateUpgradeProposalHandler creates code upgrade proposals.
type CreateUpgradeProposalHandler struct {
	k *Keeper
}

var _ vault.Handler = CreateUpgradeProposalHandler{}

func (h CreateUpgradeProposalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	var msg CreateUpgradeProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.k.authorizeMember(ctx, db, msg.Sender); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h CreateUpgradeProposalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	var msg CreateUpgradeProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	id, err := h.k.CreateUpgradeProposal(ctx, db, msg.Sender, msg.CodeID, msg.Expiration)
	if err != nil {
		return nil, err
	}
	return &vault.DeliverResult{
		Data: ProposalKey(id),
		Tags: eventTags("create", id, msg.Sender),
	}, nil
}

// SignProposalHandler records proposal signatures.
type SignProposalHandler struct {
	k *Keeper
}

var _ vault.Handler = SignProposalHandler{}

func (h SignProposalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	var msg SignProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.k.authorizeMember(ctx, db, msg.Sender); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h SignProposalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	var msg SignProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.k.Sign(ctx, db, msg.Sender, msg.ProposalID); err != nil {
		return nil, err
	}
	return &vault.DeliverResult{Tags: eventTags("sign", msg.ProposalID, msg.Sender)}, nil
}

// ExecuteProposalHandler executes proposals. The execution itself happens
// only in Deliver because the outcome depends on the block time.
type ExecuteProposalHandler struct {
	k *Keeper
}

var _ vault.Handler = ExecuteProposalHandler{}

func (h ExecuteProposalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	var msg ExecuteProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.k.authorizeMember(ctx, db, msg.Sender); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h ExecuteProposalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	var msg ExecuteProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.k.Execute(ctx, db, msg.Sender, msg.ProposalID); err != nil {
		if errors.IsCommitted(err) {
			return &vault.DeliverResult{Tags: eventTags("close", msg.ProposalID, msg.Sender)}, err
		}
		return nil, err
	}
	return &vault.DeliverResult{Tags: eventTags("execute", msg.ProposalID, msg.Sender)}, nil
}

// RemoveProposalHandler deletes proposals.
type RemoveProposalHandler struct {
	k *Keeper
}

var _ vault.Handler = RemoveProposalHandler{}

func (h RemoveProposalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	var msg RemoveProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.k.authorizeMember(ctx, db, msg.Sender); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h RemoveProposalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	var msg RemoveProposalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.k.Remove(ctx, db, msg.Sender, msg.ProposalID); err != nil {
		return nil, err
	}
	return &vault.DeliverResult{Tags: eventTags("remove", msg.ProposalID, msg.Sender)}, nil
}
