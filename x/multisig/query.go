package multisig

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/gconf"
	"github.com/iov-one/vault/orm"
)

// Info returns the vault configuration together with its members and the
// current version. ErrNotFound is returned for an uninitialized vault.
func (k *Keeper) Info(db vault.ReadOnlyKVStore) (*Info, error) {
	var conf Config
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "vault not initialized")
	}
	members, err := k.loadMembers(db)
	if err != nil {
		return nil, err
	}
	version, err := k.Version(db)
	if err != nil {
		return nil, err
	}
	return &Info{
		Name:        conf.Name,
		Description: conf.Description,
		Members:     members.Members,
		QuorumBps:   conf.QuorumBps,
		Version:     version,
	}, nil
}

// Members returns all vault members in the order they were declared.
func (k *Keeper) Members(db vault.ReadOnlyKVStore) ([]vault.Address, error) {
	set, err := k.loadMembers(db)
	if err != nil {
		return nil, err
	}
	return set.Members, nil
}

// Proposal returns the proposal with given id or nil if it does not exist.
func (k *Keeper) Proposal(db vault.ReadOnlyKVStore, id uint64) (*Proposal, error) {
	p, err := k.loadProposal(db, id)
	if ErrProposalNotFound.Is(err) {
		return nil, nil
	}
	return p, err
}

// AllProposals returns every stored proposal ordered by id. Removed
// proposals are skipped.
func (k *Keeper) AllProposals(db vault.ReadOnlyKVStore) ([]*Proposal, error) {
	last, err := k.LastProposalID(db)
	if err != nil {
		return nil, err
	}
	res := make([]*Proposal, 0, last)
	for id := uint64(1); id <= last; id++ {
		p, err := k.Proposal(db, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			res = append(res, p)
		}
	}
	return res, nil
}

// Signatures reports for every member if it signed given proposal.
func (k *Keeper) Signatures(db vault.ReadOnlyKVStore, id uint64) ([]SignatureStatus, error) {
	members, err := k.loadMembers(db)
	if err != nil {
		return nil, err
	}
	sigs, err := k.loadSignatures(db, id)
	if err != nil {
		return nil, err
	}
	res := make([]SignatureStatus, len(members.Members))
	for i, m := range members.Members {
		res[i] = SignatureStatus{Member: m, Signed: sigs.Has(m)}
	}
	return res, nil
}

// LastProposalID returns the id assigned to the most recent proposal or
// zero if none was created.
func (k *Keeper) LastProposalID(db vault.ReadOnlyKVStore) (uint64, error) {
	last, _, err := k.lastID.Latest(db)
	if err != nil {
		return 0, errors.Wrap(err, "proposal id")
	}
	return uint64(last), nil
}

// IsProposalReady returns true if the proposal collected enough signatures
// to be executed. Expiration and status are not considered.
func (k *Keeper) IsProposalReady(db vault.ReadOnlyKVStore, id uint64) (bool, error) {
	if _, err := k.loadProposal(db, id); err != nil {
		return false, err
	}
	members, err := k.loadMembers(db)
	if err != nil {
		return false, err
	}
	return k.quorumReached(db, members, id)
}

// Version returns how many upgrade proposals were executed.
func (k *Keeper) Version(db vault.ReadOnlyKVStore) (uint64, error) {
	var v VersionCounter
	switch err := k.versions.One(db, versionKey, &v); {
	case err == nil:
		return v.Value, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "load version")
	}
}

// RegisterQuery exposes the keeper queries under the "/multisig" prefix.
// Queries about a single proposal expect the 8 byte big endian encoded
// proposal id as data (see ProposalKey).
func RegisterQuery(qr vault.QueryRouter, k *Keeper) {
	qr.Register("/multisig/info", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return k.Info(db)
	}))
	qr.Register("/multisig/members", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return k.Members(db)
	}))
	qr.Register("/multisig/proposal", idQuery(func(db vault.ReadOnlyKVStore, id uint64) (interface{}, error) {
		p, err := k.Proposal(db, id)
		if p == nil {
			// Avoid a typed nil inside of the interface.
			return nil, err
		}
		return p, err
	}))
	qr.Register("/multisig/proposals", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return k.AllProposals(db)
	}))
	qr.Register("/multisig/signatures", idQuery(func(db vault.ReadOnlyKVStore, id uint64) (interface{}, error) {
		return k.Signatures(db, id)
	}))
	qr.Register("/multisig/lastid", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return k.LastProposalID(db)
	}))
	qr.Register("/multisig/ready", idQuery(func(db vault.ReadOnlyKVStore, id uint64) (interface{}, error) {
		return k.IsProposalReady(db, id)
	}))
	qr.Register("/multisig/version", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return k.Version(db)
	}))
}

func idQuery(fn func(vault.ReadOnlyKVStore, uint64) (interface{}, error)) vault.QueryHandler {
	return vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, data []byte) (interface{}, error) {
		if len(data) != 8 {
			return nil, errors.Wrap(errors.ErrInput, "proposal id must be 8 bytes")
		}
		return fn(db, uint64(orm.DecodeSequence(data)))
	})
}
