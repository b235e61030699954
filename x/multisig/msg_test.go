package multisig

import (
	"strings"
	"testing"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/weavetest"
	"github.com/iov-one/vault/weavetest/assert"
)

func TestMsgValidate(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bert := weavetest.NewCondition().Address()

	cases := map[string]struct {
		msg       vault.Msg
		wantErrs  map[string]*errors.Error
		wantValid bool
	}{
		"valid initialize": {
			msg:       &InitializeMsg{Name: "vault", Members: []vault.Address{alice, bert}},
			wantValid: true,
		},
		"initialize without members": {
			msg: &InitializeMsg{Name: "vault", QuorumBps: 50},
			wantErrs: map[string]*errors.Error{
				"Members":   ErrMembersListEmpty,
				"QuorumBps": ErrInitializeTooLowQuorum,
			},
		},
		"initialize with zero address": {
			msg: &InitializeMsg{Members: []vault.Address{vault.ZeroAddress}, QuorumBps: 20000},
			wantErrs: map[string]*errors.Error{
				"Members":   ErrZeroAddressProvided,
				"QuorumBps": ErrInitializeTooHighQuorum,
			},
		},
		"initialize with long texts": {
			msg: &InitializeMsg{
				Name:        strings.Repeat("x", 65),
				Description: strings.Repeat("x", 257),
				Members:     []vault.Address{alice},
			},
			wantErrs: map[string]*errors.Error{
				"Name":        ErrTitleTooLong,
				"Description": ErrDescriptionTooLong,
			},
		},
		"valid transfer proposal": {
			msg: &CreateTransferProposalMsg{
				Sender:    alice,
				Title:     "rent",
				Recipient: bert,
				Amount:    100,
				Token:     "IOV",
			},
			wantValid: true,
		},
		"invalid transfer proposal": {
			msg: &CreateTransferProposalMsg{
				Sender: []byte("bad"),
				Title:  strings.Repeat("x", 65),
				Token:  "X",
			},
			wantErrs: map[string]*errors.Error{
				"Sender":    errors.ErrInput,
				"Title":     ErrTitleTooLong,
				"Recipient": errors.ErrInput,
				"Amount":    errors.ErrAmount,
				"Token":     errors.ErrCurrency,
			},
		},
		"valid upgrade proposal": {
			msg:       &CreateUpgradeProposalMsg{Sender: alice, CodeID: codeID(1), Expiration: 3600},
			wantValid: true,
		},
		"upgrade proposal with short code id": {
			msg: &CreateUpgradeProposalMsg{Sender: alice, CodeID: []byte{1, 2, 3}},
			wantErrs: map[string]*errors.Error{
				"CodeID": errors.ErrInput,
			},
		},
		"valid sign": {
			msg:       &SignProposalMsg{Sender: alice, ProposalID: 1},
			wantValid: true,
		},
		"sign without proposal": {
			msg: &SignProposalMsg{Sender: alice},
			wantErrs: map[string]*errors.Error{
				"ProposalID": errors.ErrInput,
			},
		},
		"execute without sender": {
			msg: &ExecuteProposalMsg{ProposalID: 4},
			wantErrs: map[string]*errors.Error{
				"Sender": errors.ErrInput,
			},
		},
		"valid remove": {
			msg:       &RemoveProposalMsg{Sender: bert, ProposalID: 2},
			wantValid: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantValid {
				assert.Nil(t, err)
				return
			}
			for field, want := range tc.wantErrs {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestMsgPaths(t *testing.T) {
	paths := map[string]vault.Msg{
		"multisig/initialize":      &InitializeMsg{},
		"multisig/create_transfer": &CreateTransferProposalMsg{},
		"multisig/create_upgrade":  &CreateUpgradeProposalMsg{},
		"multisig/sign":            &SignProposalMsg{},
		"multisig/execute":         &ExecuteProposalMsg{},
		"multisig/remove":          &RemoveProposalMsg{},
	}
	for want, msg := range paths {
		assert.Equal(t, want, msg.Path())
	}
}

func TestProposalSerialization(t *testing.T) {
	p := Proposal{
		ID:        7,
		Sender:    weavetest.NewCondition().Address(),
		Title:     "upgrade",
		Action:    &UpgradeAction{CodeID: codeID(3)},
		Status:    StatusOpen,
		CreatedAt: 1000,
		ExpiresAt: 5000,
	}
	assert.Nil(t, p.Validate())
	raw, err := p.Marshal()
	assert.Nil(t, err)

	var got Proposal
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, p, got)
}
