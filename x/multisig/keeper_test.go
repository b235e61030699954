package multisig

import (
	"context"
	"strings"
	"testing"
	"time"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/weavetest"
	"github.com/iov-one/vault/weavetest/assert"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/code"
)

var blockNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// vaultEnv wires a keeper with real cash and code controllers on top of an
// in memory store.
type vaultEnv struct {
	db      vault.CacheableKVStore
	auth    *weavetest.CtxAuth
	cash    cash.BaseController
	code    *code.BaseController
	keeper  *Keeper
	members []vault.Condition
	now     time.Time
}

func newVaultEnv(t testing.TB, memberCount int, quorumBps uint32) *vaultEnv {
	t.Helper()
	env := &vaultEnv{
		db:   store.MemStore(),
		auth: &weavetest.CtxAuth{Key: "auth"},
		cash: cash.NewController(cash.NewBucket()),
		code: code.NewController(),
		now:  blockNow,
	}
	env.keeper = NewKeeper(env.auth, env.cash, env.code)

	if memberCount == 0 {
		return env
	}
	addrs := make([]vault.Address, memberCount)
	for i := range addrs {
		c := weavetest.NewCondition()
		env.members = append(env.members, c)
		addrs[i] = c.Address()
	}
	err := env.keeper.Initialize(context.Background(), env.db, "vault", "test vault", addrs, quorumBps)
	assert.Nil(t, err)
	return env
}

// ctx returns a request context authenticated by given signers.
func (env *vaultEnv) ctx(signers ...vault.Condition) vault.Context {
	ctx := vault.WithBlockTime(context.Background(), env.now)
	return env.auth.SetConditions(ctx, signers...)
}

func (env *vaultEnv) fundVault(t testing.TB, amount uint64) {
	t.Helper()
	assert.Nil(t, env.cash.IssueCoins(env.db, VaultAddress(), coin.NewCoin(amount, "IOV")))
}

func (env *vaultEnv) createTransfer(t testing.TB, sender vault.Condition, recipient vault.Address, amount uint64) uint64 {
	t.Helper()
	id, err := env.keeper.CreateTransferProposal(env.ctx(sender), env.db, sender.Address(),
		"pay", "pay the bills", recipient, amount, "IOV", 0)
	assert.Nil(t, err)
	return id
}

func (env *vaultEnv) sign(t testing.TB, signers ...vault.Condition) func(id uint64) {
	return func(id uint64) {
		t.Helper()
		for _, s := range signers {
			assert.Nil(t, env.keeper.Sign(env.ctx(s), env.db, s.Address(), id))
		}
	}
}

func codeID(b byte) []byte {
	id := make([]byte, code.CodeIDLength)
	for i := range id {
		id[i] = b
	}
	return id
}

func TestInitialize(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bert := weavetest.NewCondition().Address()

	cases := map[string]struct {
		name        string
		description string
		members     []vault.Address
		quorum      uint32
		wantErr     *errors.Error
		wantMembers []vault.Address
		wantQuorum  uint32
	}{
		"default quorum": {
			members:     []vault.Address{alice, bert},
			wantMembers: []vault.Address{alice, bert},
			wantQuorum:  10000,
		},
		"lowest quorum": {
			members:     []vault.Address{alice},
			quorum:      101,
			wantMembers: []vault.Address{alice},
			wantQuorum:  101,
		},
		"duplicated members are collapsed": {
			members:     []vault.Address{alice, bert, alice},
			quorum:      5000,
			wantMembers: []vault.Address{alice, bert},
			wantQuorum:  5000,
		},
		"quorum too low": {
			members: []vault.Address{alice},
			quorum:  100,
			wantErr: ErrInitializeTooLowQuorum,
		},
		"quorum too high": {
			members: []vault.Address{alice},
			quorum:  10001,
			wantErr: ErrInitializeTooHighQuorum,
		},
		"no members": {
			wantErr: ErrMembersListEmpty,
		},
		"zero address member": {
			members: []vault.Address{alice, vault.ZeroAddress},
			wantErr: ErrZeroAddressProvided,
		},
		"nil member": {
			members: []vault.Address{nil},
			wantErr: ErrZeroAddressProvided,
		},
		"malformed member": {
			members: []vault.Address{[]byte("short")},
			wantErr: errors.ErrInput,
		},
		"name too long": {
			name:    strings.Repeat("n", 65),
			members: []vault.Address{alice},
			wantErr: ErrTitleTooLong,
		},
		"name length counts characters": {
			name:        strings.Repeat("ł", 64),
			members:     []vault.Address{alice},
			wantMembers: []vault.Address{alice},
			wantQuorum:  10000,
		},
		"description too long": {
			description: strings.Repeat("d", 257),
			members:     []vault.Address{alice},
			wantErr:     ErrDescriptionTooLong,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newVaultEnv(t, 0, 0)
			err := env.keeper.Initialize(env.ctx(), env.db, tc.name, tc.description, tc.members, tc.quorum)
			assert.IsErr(t, tc.wantErr, err)

			ok, err := env.keeper.IsInitialized(env.db)
			assert.Nil(t, err)
			if tc.wantErr != nil {
				if ok {
					t.Fatal("failed initialization must not mark the vault initialized")
				}
				_, err := env.keeper.Info(env.db)
				assert.IsErr(t, errors.ErrNotFound, err)
				members, err := env.keeper.Members(env.db)
				assert.Nil(t, err)
				assert.Equal(t, 0, len(members))
				return
			}

			info, err := env.keeper.Info(env.db)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantMembers, info.Members)
			assert.Equal(t, tc.wantQuorum, info.QuorumBps)
			assert.Equal(t, tc.name, info.Name)
			assert.Equal(t, uint64(0), info.Version)
		})
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	env := newVaultEnv(t, 2, 5000)
	before, err := env.keeper.Info(env.db)
	assert.Nil(t, err)

	other := weavetest.NewCondition().Address()
	err = env.keeper.Initialize(env.ctx(), env.db, "other", "", []vault.Address{other}, 10000)
	assert.IsErr(t, ErrAlreadyInitialized, err)

	after, err := env.keeper.Info(env.db)
	assert.Nil(t, err)
	assert.Equal(t, before, after)
}

func TestProposalIDsIncrease(t *testing.T) {
	env := newVaultEnv(t, 1, 0)
	alice := env.members[0]
	recipient := weavetest.NewCondition().Address()

	last, err := env.keeper.LastProposalID(env.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), last)

	assert.Equal(t, uint64(1), env.createTransfer(t, alice, recipient, 1))
	id, err := env.keeper.CreateUpgradeProposal(env.ctx(alice), env.db, alice.Address(), codeID(1), 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), id)
	assert.Equal(t, uint64(3), env.createTransfer(t, alice, recipient, 2))

	last, err = env.keeper.LastProposalID(env.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), last)
}

func TestCreateProposal(t *testing.T) {
	recipient := weavetest.NewCondition().Address()
	outsider := weavetest.NewCondition()

	cases := map[string]struct {
		uninitialized bool
		// signer returns the authenticated condition and the declared
		// sender.
		signer      func(env *vaultEnv) (vault.Condition, vault.Address)
		title       string
		description string
		amount      uint64
		token       string
		expiration  uint64
		wantErr     *errors.Error
		wantExpires time.Duration
	}{
		"default expiration": {
			wantExpires: 7 * 24 * time.Hour,
		},
		"one hour is the shortest expiration": {
			expiration:  3600,
			wantExpires: time.Hour,
		},
		"expiration shorter than one hour": {
			expiration: 3599,
			wantErr:    ErrInvalidExpirationDate,
		},
		"expiration overflow": {
			expiration: 1 << 63,
			wantErr:    ErrInvalidExpirationDate,
		},
		"sender is not a member": {
			signer: func(*vaultEnv) (vault.Condition, vault.Address) {
				return outsider, outsider.Address()
			},
			wantErr: ErrUnauthorizedNotAMember,
		},
		"member did not sign the request": {
			signer: func(env *vaultEnv) (vault.Condition, vault.Address) {
				return outsider, env.members[0].Address()
			},
			wantErr: ErrUnauthorizedNotAMember,
		},
		"vault not initialized": {
			uninitialized: true,
			signer: func(*vaultEnv) (vault.Condition, vault.Address) {
				return outsider, outsider.Address()
			},
			wantErr: ErrUnauthorizedNotAMember,
		},
		"title too long": {
			title:   strings.Repeat("t", 65),
			wantErr: ErrTitleTooLong,
		},
		"description too long": {
			description: strings.Repeat("d", 257),
			wantErr:     ErrDescriptionTooLong,
		},
		"zero amount": {
			token:   "IOV",
			wantErr: errors.ErrAmount,
		},
		"invalid ticker": {
			amount:  10,
			token:   "iov",
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			members := 2
			if tc.uninitialized {
				members = 0
			}
			env := newVaultEnv(t, members, 0)

			var (
				signer vault.Condition
				sender vault.Address
			)
			if tc.signer != nil {
				signer, sender = tc.signer(env)
			} else {
				signer, sender = env.members[0], env.members[0].Address()
			}
			amount, token := tc.amount, tc.token
			if amount == 0 && token == "" {
				amount, token = 10, "IOV"
			}

			id, err := env.keeper.CreateTransferProposal(env.ctx(signer), env.db, sender,
				tc.title, tc.description, recipient, amount, token, tc.expiration)
			assert.IsErr(t, tc.wantErr, err)

			last, lerr := env.keeper.LastProposalID(env.db)
			assert.Nil(t, lerr)
			if tc.wantErr != nil {
				assert.Equal(t, uint64(0), last)
				return
			}
			assert.Equal(t, uint64(1), id)

			p, err := env.keeper.Proposal(env.db, id)
			assert.Nil(t, err)
			assert.Equal(t, StatusOpen, p.Status)
			assert.Equal(t, vault.AsUnixTime(blockNow), p.CreatedAt)
			assert.Equal(t, vault.AsUnixTime(blockNow.Add(tc.wantExpires)), p.ExpiresAt)
			assert.Equal(t, &TransferAction{Token: token, Amount: amount, Recipient: recipient}, p.Action)
		})
	}
}

func TestCreateUpgradeProposal(t *testing.T) {
	env := newVaultEnv(t, 1, 0)
	alice := env.members[0]

	_, err := env.keeper.CreateUpgradeProposal(env.ctx(alice), env.db, alice.Address(), []byte("short"), 0)
	assert.IsErr(t, errors.ErrInput, err)

	_, err = env.keeper.CreateUpgradeProposal(env.ctx(alice), env.db, alice.Address(), codeID(7), 3599)
	assert.IsErr(t, ErrInvalidExpirationDate, err)

	id, err := env.keeper.CreateUpgradeProposal(env.ctx(alice), env.db, alice.Address(), codeID(7), 0)
	assert.Nil(t, err)
	p, err := env.keeper.Proposal(env.db, id)
	assert.Nil(t, err)
	assert.Equal(t, &UpgradeAction{CodeID: codeID(7)}, p.Action)
	assert.Equal(t, "", p.Title)
}

func TestSign(t *testing.T) {
	env := newVaultEnv(t, 3, 5000)
	alice, bert := env.members[0], env.members[1]
	outsider := weavetest.NewCondition()
	id := env.createTransfer(t, alice, outsider.Address(), 10)

	// Non members never change the signature set.
	err := env.keeper.Sign(env.ctx(outsider), env.db, outsider.Address(), id)
	assert.IsErr(t, ErrUnauthorizedNotAMember, err)
	// Authentication of a different identity is not enough.
	err = env.keeper.Sign(env.ctx(outsider), env.db, bert.Address(), id)
	assert.IsErr(t, ErrUnauthorizedNotAMember, err)
	assertSigned(t, env, id, false, false, false)

	err = env.keeper.Sign(env.ctx(bert), env.db, bert.Address(), id+1)
	assert.IsErr(t, ErrProposalNotFound, err)

	env.sign(t, bert)(id)
	assertSigned(t, env, id, false, true, false)

	// Signing again is a no-op.
	env.sign(t, bert)(id)
	assertSigned(t, env, id, false, true, false)
	var sigs SignatureSet
	assert.Nil(t, env.keeper.signatures.One(env.db, ProposalKey(id), &sigs))
	assert.Equal(t, 1, len(sigs.Signers))

	env.fundVault(t, 10)
	env.sign(t, alice)(id)
	assert.Nil(t, env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id))
	err = env.keeper.Sign(env.ctx(alice), env.db, alice.Address(), id)
	assert.IsErr(t, ErrProposalClosed, err)
}

func assertSigned(t testing.TB, env *vaultEnv, id uint64, want ...bool) {
	t.Helper()
	got, err := env.keeper.Signatures(env.db, id)
	assert.Nil(t, err)
	assert.Equal(t, len(want), len(got))
	for i, w := range want {
		assert.Equal(t, env.members[i].Address(), got[i].Member)
		if got[i].Signed != w {
			t.Fatalf("member %d: want signed=%v", i, w)
		}
	}
}

func TestExecuteQuorum(t *testing.T) {
	cases := map[string]struct {
		members int
		quorum  uint32
		signers int
		wantErr *errors.Error
	}{
		"all members required and all signed": {
			members: 3,
			quorum:  10000,
			signers: 3,
		},
		"all members required and one missing": {
			members: 3,
			quorum:  10000,
			signers: 2,
			wantErr: ErrQuorumNotReached,
		},
		"one of three at 3300 bps": {
			members: 3,
			quorum:  3300,
			signers: 1,
		},
		"one of three at 3400 bps": {
			members: 3,
			quorum:  3400,
			signers: 1,
			wantErr: ErrQuorumNotReached,
		},
		"exactly half": {
			members: 4,
			quorum:  5000,
			signers: 2,
		},
		"no signatures": {
			members: 2,
			quorum:  101,
			wantErr: ErrQuorumNotReached,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newVaultEnv(t, tc.members, tc.quorum)
			env.fundVault(t, 100)
			recipient := weavetest.NewCondition().Address()
			id := env.createTransfer(t, env.members[0], recipient, 100)
			env.sign(t, env.members[:tc.signers]...)(id)

			ready, err := env.keeper.IsProposalReady(env.db, id)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantErr == nil, ready)

			executor := env.members[tc.members-1]
			err = env.keeper.Execute(env.ctx(executor), env.db, executor.Address(), id)
			assert.IsErr(t, tc.wantErr, err)

			p, err := env.keeper.Proposal(env.db, id)
			assert.Nil(t, err)
			if tc.wantErr != nil {
				assert.Equal(t, StatusOpen, p.Status)
				_, err := env.cash.Balance(env.db, recipient)
				assert.IsErr(t, errors.ErrNotFound, err)
				return
			}
			assert.Equal(t, StatusClosed, p.Status)
			balance, err := env.cash.Balance(env.db, recipient)
			assert.Nil(t, err)
			assert.Equal(t, coin.Coins{coin.NewCoinp(100, "IOV")}, balance)
		})
	}
}

func TestExecuteFullTransfer(t *testing.T) {
	env := newVaultEnv(t, 3, 10000)
	env.fundVault(t, 10000)
	recipient := weavetest.NewCondition().Address()
	id := env.createTransfer(t, env.members[0], recipient, 10000)
	env.sign(t, env.members...)(id)

	alice := env.members[0]
	assert.Nil(t, env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id))

	balance, err := env.cash.Balance(env.db, recipient)
	assert.Nil(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoinp(10000, "IOV")}, balance)
	_, err = env.cash.Balance(env.db, VaultAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
	assertSigned(t, env, id, true, true, true)

	p, err := env.keeper.Proposal(env.db, id)
	assert.Nil(t, err)
	assert.Equal(t, StatusClosed, p.Status)

	err = env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id)
	assert.IsErr(t, ErrProposalClosed, err)

	version, err := env.keeper.Version(env.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), version)
}

func TestExecuteExpired(t *testing.T) {
	env := newVaultEnv(t, 2, 5000)
	env.fundVault(t, 10)
	alice := env.members[0]
	id, err := env.keeper.CreateTransferProposal(env.ctx(alice), env.db, alice.Address(),
		"", "", weavetest.NewCondition().Address(), 10, "IOV", 3600)
	assert.Nil(t, err)
	env.sign(t, env.members...)(id)

	ready, err := env.keeper.IsProposalReady(env.db, id)
	assert.Nil(t, err)
	assert.Equal(t, true, ready)

	// Expiration time itself is still valid.
	env.now = blockNow.Add(time.Hour)
	attempt := env.db.CacheWrap()
	assert.Nil(t, env.keeper.Execute(env.ctx(alice), attempt, alice.Address(), id))
	attempt.Discard()

	env.now = blockNow.Add(time.Hour + time.Second)
	db := env.db.CacheWrap()
	err = env.keeper.Execute(env.ctx(alice), db, alice.Address(), id)
	assert.IsErr(t, ErrProposalExpired, err)
	if !errors.IsCommitted(err) {
		t.Fatal("expiration close must be committed")
	}
	assert.Nil(t, db.Write())

	p, err := env.keeper.Proposal(env.db, id)
	assert.Nil(t, err)
	assert.Equal(t, StatusClosed, p.Status)
	balance, err := env.cash.Balance(env.db, VaultAddress())
	assert.Nil(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoinp(10, "IOV")}, balance)

	err = env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id)
	assert.IsErr(t, ErrProposalClosed, err)
	if errors.IsCommitted(err) {
		t.Fatal("only the expiration close is committed")
	}
}

func TestExecuteTransferFailure(t *testing.T) {
	env := newVaultEnv(t, 1, 0)
	alice := env.members[0]
	env.fundVault(t, 5)
	id := env.createTransfer(t, alice, weavetest.NewCondition().Address(), 10)
	env.sign(t, alice)(id)

	err := env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	p, err := env.keeper.Proposal(env.db, id)
	assert.Nil(t, err)
	assert.Equal(t, StatusOpen, p.Status)
}

func TestExecuteUnauthorized(t *testing.T) {
	env := newVaultEnv(t, 2, 5000)
	alice := env.members[0]
	outsider := weavetest.NewCondition()
	id := env.createTransfer(t, alice, outsider.Address(), 10)
	env.sign(t, alice)(id)

	err := env.keeper.Execute(env.ctx(outsider), env.db, outsider.Address(), id)
	assert.IsErr(t, ErrUnauthorizedNotAMember, err)
	err = env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id+10)
	assert.IsErr(t, ErrProposalNotFound, err)
}

func TestExecuteUpgrade(t *testing.T) {
	env := newVaultEnv(t, 2, 10000)
	alice, bert := env.members[0], env.members[1]

	for i, b := range []byte{0xAA, 0xBB} {
		id, err := env.keeper.CreateUpgradeProposal(env.ctx(bert), env.db, bert.Address(), codeID(b), 0)
		assert.Nil(t, err)
		env.sign(t, alice, bert)(id)
		assert.Nil(t, env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id))

		version, err := env.keeper.Version(env.db)
		assert.Nil(t, err)
		assert.Equal(t, uint64(i+1), version)

		current, err := env.code.Current(env.db)
		assert.Nil(t, err)
		assert.Equal(t, code.CodeID(codeID(b)), current.CodeID)
	}

	// A transfer leaves the version untouched.
	env.fundVault(t, 1)
	id := env.createTransfer(t, alice, bert.Address(), 1)
	env.sign(t, alice, bert)(id)
	assert.Nil(t, env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), id))
	info, err := env.keeper.Info(env.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), info.Version)
}

func TestRemove(t *testing.T) {
	env := newVaultEnv(t, 2, 5000)
	alice, bert := env.members[0], env.members[1]
	recipient := weavetest.NewCondition().Address()

	first := env.createTransfer(t, alice, recipient, 1)
	second := env.createTransfer(t, alice, recipient, 2)
	env.sign(t, alice, bert)(first)

	err := env.keeper.Remove(env.ctx(bert), env.db, bert.Address(), first)
	assert.IsErr(t, ErrUnauthorizedNotAMember, err)

	assert.Nil(t, env.keeper.Remove(env.ctx(alice), env.db, alice.Address(), first))
	p, err := env.keeper.Proposal(env.db, first)
	assert.Nil(t, err)
	assert.Nil(t, p)
	assertSigned(t, env, first, false, false)

	err = env.keeper.Remove(env.ctx(alice), env.db, alice.Address(), first)
	assert.IsErr(t, ErrProposalNotFound, err)
	err = env.keeper.Execute(env.ctx(alice), env.db, alice.Address(), first)
	assert.IsErr(t, ErrProposalNotFound, err)
	_, err = env.keeper.IsProposalReady(env.db, first)
	assert.IsErr(t, ErrProposalNotFound, err)

	third := env.createTransfer(t, alice, recipient, 3)
	assert.Equal(t, uint64(3), third)

	all, err := env.keeper.AllProposals(env.db)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(all))
	assert.Equal(t, second, all[0].ID)
	assert.Equal(t, third, all[1].ID)
}
