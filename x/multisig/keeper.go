package multisig

import (
	"math"
	"time"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/gconf"
	"github.com/iov-one/vault/orm"
	"github.com/iov-one/vault/x"
)

// TokenMover transfers tokens between accounts.
type TokenMover interface {
	MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error
}

// CodeInstaller replaces the running code with the revision identified by
// the code id.
type CodeInstaller interface {
	InstallCode(db vault.KVStore, codeID []byte) error
}

// Keeper implements the vault state machine. Every method accepts the store
// it operates on, the keeper itself is stateless.
type Keeper struct {
	auth   x.Authenticator
	tokens TokenMover
	code   CodeInstaller

	members    orm.ModelBucket
	proposals  orm.ModelBucket
	signatures orm.ModelBucket
	versions   orm.ModelBucket
	lastID     orm.Sequence
}

// NewKeeper returns a keeper authorizing callers with auth and delegating
// proposal actions to tokens and code.
func NewKeeper(auth x.Authenticator, tokens TokenMover, code CodeInstaller) *Keeper {
	return &Keeper{
		auth:       auth,
		tokens:     tokens,
		code:       code,
		members:    orm.NewModelBucket(membersBucket, &MemberSet{}),
		proposals:  orm.NewModelBucket(proposalsBucket, &Proposal{}),
		signatures: orm.NewModelBucket(signaturesBucket, &SignatureSet{}),
		versions:   orm.NewModelBucket(versionBucket, &VersionCounter{}),
		lastID:     orm.NewSequence(proposalsBucket, "id"),
	}
}

// Initialize configures the vault. It can be called only once. All input is
// validated before anything is written so a failed call leaves no state
// behind.
func (k *Keeper) Initialize(ctx vault.Context, db vault.KVStore, name, description string, members []vault.Address, quorumBps uint32) error {
	ok, err := k.IsInitialized(db)
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrap(ErrAlreadyInitialized, "cannot initialize twice")
	}

	if err := validateMembers(members); err != nil {
		return err
	}
	conf := Config{
		Name:        name,
		Description: description,
		QuorumBps:   resolveQuorum(quorumBps),
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	set := MemberSet{Members: uniqueMembers(members)}

	if err := db.Set(initializedKey, []byte{1}); err != nil {
		return errors.Wrap(err, "initialized flag")
	}
	if err := gconf.Save(db, packageName, &conf); err != nil {
		return errors.Wrap(err, "save config")
	}
	if err := k.members.Put(db, membersKey, &set); err != nil {
		return errors.Wrap(err, "save members")
	}
	if err := k.versions.Put(db, versionKey, &VersionCounter{}); err != nil {
		return errors.Wrap(err, "save version")
	}

	vault.GetLogger(ctx).Info("vault initialized",
		"name", conf.Name, "members", len(set.Members), "quorum_bps", conf.QuorumBps)
	return nil
}

// IsInitialized returns true once Initialize succeeded.
func (k *Keeper) IsInitialized(db vault.ReadOnlyKVStore) (bool, error) {
	ok, err := db.Has(initializedKey)
	if err != nil {
		return false, errors.Wrap(err, "initialized flag")
	}
	return ok, nil
}

// CreateTransferProposal stores a new open proposal moving amount of token
// from the vault to the recipient. Expiration is the proposal lifetime in
// seconds, zero selects DefaultExpiration. The new proposal id is returned.
func (k *Keeper) CreateTransferProposal(
	ctx vault.Context,
	db vault.KVStore,
	sender vault.Address,
	title, description string,
	recipient vault.Address,
	amount uint64,
	token string,
	expiration uint64,
) (uint64, error) {
	if err := validateTitle(title); err != nil {
		return 0, err
	}
	if err := validateDescription(description); err != nil {
		return 0, err
	}
	action := &TransferAction{Token: token, Amount: amount, Recipient: recipient.Clone()}
	return k.createProposal(ctx, db, sender, title, description, action, expiration)
}

// CreateUpgradeProposal stores a new open proposal installing the code
// identified by codeID. See CreateTransferProposal for the expiration rules.
func (k *Keeper) CreateUpgradeProposal(ctx vault.Context, db vault.KVStore, sender vault.Address, codeID []byte, expiration uint64) (uint64, error) {
	action := &UpgradeAction{CodeID: append([]byte(nil), codeID...)}
	return k.createProposal(ctx, db, sender, "", "", action, expiration)
}

func (k *Keeper) createProposal(
	ctx vault.Context,
	db vault.KVStore,
	sender vault.Address,
	title, description string,
	action Action,
	expiration uint64,
) (uint64, error) {
	if _, err := k.authorizeMember(ctx, db, sender); err != nil {
		return 0, err
	}
	if err := action.Validate(); err != nil {
		return 0, errors.Wrap(err, "action")
	}
	now, err := blockTime(ctx)
	if err != nil {
		return 0, err
	}
	expiresAt, err := expirationTime(now, expiration)
	if err != nil {
		return 0, err
	}

	id, err := k.lastID.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "proposal id")
	}
	proposal := Proposal{
		ID:          uint64(id),
		Sender:      sender.Clone(),
		Title:       title,
		Description: description,
		Action:      action,
		Status:      StatusOpen,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := k.proposals.Put(db, ProposalKey(proposal.ID), &proposal); err != nil {
		return 0, errors.Wrap(err, "save proposal")
	}

	vault.GetLogger(ctx).Info("proposal created",
		"proposal", proposal.ID, "sender", sender, "expires", expiresAt)
	return proposal.ID, nil
}

// expirationTime computes the expiration of a proposal created at now.
// Lifetimes shorter than MinExpiration are rejected.
func expirationTime(now vault.UnixTime, seconds uint64) (vault.UnixTime, error) {
	if seconds == 0 {
		return now.Add(DefaultExpiration), nil
	}
	if seconds > uint64(math.MaxInt64-int64(now)) {
		return 0, errors.Wrapf(ErrInvalidExpirationDate, "%d seconds overflows", seconds)
	}
	expiresAt := now + vault.UnixTime(seconds)
	if expiresAt < now.Add(MinExpiration) {
		return 0, errors.Wrapf(ErrInvalidExpirationDate,
			"%d seconds, must be at least %d", seconds, int64(MinExpiration/time.Second))
	}
	return expiresAt, nil
}

// Sign records the sender signature of an open proposal. Signing twice is
// not an error and does not change the signature set.
func (k *Keeper) Sign(ctx vault.Context, db vault.KVStore, sender vault.Address, id uint64) error {
	if _, err := k.authorizeMember(ctx, db, sender); err != nil {
		return err
	}
	proposal, err := k.loadProposal(db, id)
	if err != nil {
		return err
	}
	if proposal.Status != StatusOpen {
		return errors.Wrapf(ErrProposalClosed, "proposal %d", id)
	}

	sigs, err := k.loadSignatures(db, id)
	if err != nil {
		return err
	}
	if !sigs.Add(sender) {
		return nil
	}
	if err := k.signatures.Put(db, ProposalKey(id), sigs); err != nil {
		return errors.Wrap(err, "save signatures")
	}

	vault.GetLogger(ctx).Info("proposal signed",
		"proposal", id, "sender", sender, "signatures", len(sigs.Signers))
	return nil
}

// Execute runs the action of an open proposal that collected enough
// signatures and closes it.
//
// Executing an expired proposal closes it and returns ErrProposalExpired
// marked with errors.Committed so that the closed state is persisted.
func (k *Keeper) Execute(ctx vault.Context, db vault.KVStore, sender vault.Address, id uint64) error {
	members, err := k.authorizeMember(ctx, db, sender)
	if err != nil {
		return err
	}
	proposal, err := k.loadProposal(db, id)
	if err != nil {
		return err
	}
	if proposal.Status != StatusOpen {
		return errors.Wrapf(ErrProposalClosed, "proposal %d", id)
	}

	if _, err := blockTime(ctx); err != nil {
		return err
	}
	if vault.IsExpired(ctx, proposal.ExpiresAt) {
		proposal.Status = StatusClosed
		if err := k.proposals.Put(db, ProposalKey(id), proposal); err != nil {
			return errors.Wrap(err, "save proposal")
		}
		vault.GetLogger(ctx).Info("expired proposal closed", "proposal", id, "sender", sender)
		return errors.Committed(errors.Wrapf(ErrProposalExpired, "proposal %d expired at %s", id, proposal.ExpiresAt))
	}

	ready, err := k.quorumReached(db, members, id)
	if err != nil {
		return err
	}
	if !ready {
		return errors.Wrapf(ErrQuorumNotReached, "proposal %d", id)
	}

	if err := k.dispatch(db, proposal.Action); err != nil {
		return errors.Wrapf(err, "execute proposal %d", id)
	}

	proposal.Status = StatusClosed
	if err := k.proposals.Put(db, ProposalKey(id), proposal); err != nil {
		return errors.Wrap(err, "save proposal")
	}
	vault.GetLogger(ctx).Info("proposal executed", "proposal", id, "sender", sender)
	return nil
}

// dispatch performs the proposal action.
func (k *Keeper) dispatch(db vault.KVStore, action Action) error {
	switch a := action.(type) {
	case *TransferAction:
		if err := k.tokens.MoveCoins(db, VaultAddress(), a.Recipient, a.Coin()); err != nil {
			return errors.Wrap(err, "transfer")
		}
		return nil
	case *UpgradeAction:
		if err := k.code.InstallCode(db, a.CodeID); err != nil {
			return errors.Wrap(err, "install code")
		}
		return k.incrementVersion(db)
	default:
		return errors.Wrapf(errors.ErrHuman, "unknown action %T", action)
	}
}

func (k *Keeper) incrementVersion(db vault.KVStore) error {
	var v VersionCounter
	switch err := k.versions.One(db, versionKey, &v); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		// Version always starts at zero.
	default:
		return errors.Wrap(err, "load version")
	}
	if v.Value == math.MaxUint64 {
		return errors.Wrap(errors.ErrOverflow, "version")
	}
	v.Value++
	return errors.Wrap(k.versions.Put(db, versionKey, &v), "save version")
}

// Remove deletes a proposal together with its signatures. Only the member
// that created the proposal can remove it. Removed ids are never reused.
func (k *Keeper) Remove(ctx vault.Context, db vault.KVStore, sender vault.Address, id uint64) error {
	if _, err := k.authorizeMember(ctx, db, sender); err != nil {
		return err
	}
	proposal, err := k.loadProposal(db, id)
	if err != nil {
		return err
	}
	if !proposal.Sender.Equals(sender) {
		return errors.Wrapf(ErrUnauthorizedNotAMember, "proposal %d can be removed only by its author", id)
	}
	if err := k.proposals.Delete(db, ProposalKey(id)); err != nil {
		return errors.Wrap(err, "delete proposal")
	}
	switch err := k.signatures.Delete(db, ProposalKey(id)); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "delete signatures")
	}
	vault.GetLogger(ctx).Info("proposal removed", "proposal", id, "sender", sender)
	return nil
}

// authorizeMember ensures the sender authorized the call and belongs to the
// vault. The member set is returned for further use.
func (k *Keeper) authorizeMember(ctx vault.Context, db vault.ReadOnlyKVStore, sender vault.Address) (*MemberSet, error) {
	if !k.auth.HasAddress(ctx, sender) {
		return nil, errors.Wrap(ErrUnauthorizedNotAMember, "sender signature missing")
	}
	members, err := k.loadMembers(db)
	if err != nil {
		return nil, err
	}
	if !members.Contains(sender) {
		return nil, errors.Wrapf(ErrUnauthorizedNotAMember, "%s", sender)
	}
	return members, nil
}

func (k *Keeper) loadMembers(db vault.ReadOnlyKVStore) (*MemberSet, error) {
	var set MemberSet
	switch err := k.members.One(db, membersKey, &set); {
	case err == nil:
		return &set, nil
	case errors.ErrNotFound.Is(err):
		return &MemberSet{}, nil
	default:
		return nil, errors.Wrap(err, "load members")
	}
}

func (k *Keeper) loadProposal(db vault.ReadOnlyKVStore, id uint64) (*Proposal, error) {
	var p Proposal
	switch err := k.proposals.One(db, ProposalKey(id), &p); {
	case err == nil:
		return &p, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrProposalNotFound, "proposal %d", id)
	default:
		return nil, errors.Wrapf(err, "load proposal %d", id)
	}
}

func (k *Keeper) loadSignatures(db vault.ReadOnlyKVStore, id uint64) (*SignatureSet, error) {
	var s SignatureSet
	switch err := k.signatures.One(db, ProposalKey(id), &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &SignatureSet{}, nil
	default:
		return nil, errors.Wrapf(err, "load signatures %d", id)
	}
}

// quorumReached tallies the signatures of current members only.
func (k *Keeper) quorumReached(db vault.ReadOnlyKVStore, members *MemberSet, id uint64) (bool, error) {
	var conf Config
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return false, errors.Wrap(err, "load config")
	}
	sigs, err := k.loadSignatures(db, id)
	if err != nil {
		return false, err
	}
	var signed uint64
	for _, m := range members.Members {
		if sigs.Has(m) {
			signed++
		}
	}
	return QuorumReached(signed, uint64(len(members.Members)), conf.QuorumBps), nil
}

func blockTime(ctx vault.Context) (vault.UnixTime, error) {
	now, err := vault.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	return vault.AsUnixTime(now), nil
}
