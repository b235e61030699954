package multisig

import (
	"time"
	"unicode/utf8"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

const (
	maxNameLength        = 64
	maxTitleLength       = 64
	maxDescriptionLength = 256

	// DefaultQuorumBps is used when initialization does not declare a
	// quorum. It requires every member to sign.
	DefaultQuorumBps uint32 = 10000
	minQuorumBps     uint32 = 100
	maxQuorumBps     uint32 = 10000

	// DefaultExpiration is the proposal lifetime used when none is given.
	DefaultExpiration = 7 * 24 * time.Hour
	// MinExpiration is the shortest lifetime a proposal can be created
	// with.
	MinExpiration = time.Hour
)

const (
	packageName = "multisig"

	membersBucket    = "msigmem"
	proposalsBucket  = "msigprop"
	signaturesBucket = "msigsig"
	versionBucket    = "msigver"
)

var (
	initializedKey = []byte("_i:" + packageName)
	membersKey     = []byte("members")
	versionKey     = []byte("current")
)

// VaultCondition is the condition owning the vault funds.
func VaultCondition() vault.Condition {
	return vault.NewCondition(packageName, "vault", nil)
}

// VaultAddress is the address holding the tokens transferred by proposals.
func VaultAddress() vault.Address {
	return VaultCondition().Address()
}

// ProposalKey returns the store key of a proposal. It is also the data
// expected by the queries addressing a single proposal.
func ProposalKey(id uint64) []byte {
	return orm.EncodeSequence(int64(id))
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.Wrapf(ErrTitleTooLong, "name longer than %d characters", maxNameLength)
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return errors.Wrapf(ErrTitleTooLong, "title longer than %d characters", maxTitleLength)
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return errors.Wrapf(ErrDescriptionTooLong, "description longer than %d characters", maxDescriptionLength)
	}
	return nil
}

// resolveQuorum returns the quorum to use, replacing zero with the default.
func resolveQuorum(bps uint32) uint32 {
	if bps == 0 {
		return DefaultQuorumBps
	}
	return bps
}

func validateQuorum(bps uint32) error {
	switch {
	case bps <= minQuorumBps:
		return errors.Wrapf(ErrInitializeTooLowQuorum, "%d bps, must be above %d", bps, minQuorumBps)
	case bps > maxQuorumBps:
		return errors.Wrapf(ErrInitializeTooHighQuorum, "%d bps, must not exceed %d", bps, maxQuorumBps)
	}
	return nil
}

func validateMembers(members []vault.Address) error {
	if len(members) == 0 {
		return errors.Wrap(ErrMembersListEmpty, "at least one member required")
	}
	for i, m := range members {
		if len(m) == 0 || m.IsZero() {
			return errors.Wrapf(ErrZeroAddressProvided, "member %d", i)
		}
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
	}
	return nil
}

// uniqueMembers drops repeated addresses keeping the first occurrence order.
func uniqueMembers(members []vault.Address) []vault.Address {
	res := make([]vault.Address, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[string(m)]; ok {
			continue
		}
		seen[string(m)] = struct{}{}
		res = append(res, m.Clone())
	}
	return res
}

// Validate ensures the configuration is within bounds.
func (c *Config) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if err := validateDescription(c.Description); err != nil {
		return err
	}
	return validateQuorum(c.QuorumBps)
}

func (m *MemberSet) Validate() error {
	return validateMembers(m.Members)
}

// Contains returns true if given address is a member.
func (m *MemberSet) Contains(addr vault.Address) bool {
	for _, member := range m.Members {
		if member.Equals(addr) {
			return true
		}
	}
	return false
}

// Validate ensures the transfer can be represented as a coin movement.
func (a *TransferAction) Validate() error {
	var errs error
	if a.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	if !coin.IsCC(a.Token) {
		errs = errors.AppendField(errs, "Token", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", a.Token))
	}
	errs = errors.AppendField(errs, "Recipient", a.Recipient.Validate())
	return errs
}

// Coin returns the transferred amount as a coin.
func (a *TransferAction) Coin() coin.Coin {
	return coin.NewCoin(a.Amount, a.Token)
}

func (a *UpgradeAction) Validate() error {
	return errors.Field("CodeID", a.CodeID.Validate(), "invalid code id")
}

func (p *Proposal) Validate() error {
	var errs error
	if p.ID == 0 {
		errs = errors.AppendField(errs, "ID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Sender", p.Sender.Validate())
	errs = errors.AppendField(errs, "Title", validateTitle(p.Title))
	errs = errors.AppendField(errs, "Description", validateDescription(p.Description))
	if p.Action == nil {
		errs = errors.AppendField(errs, "Action", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Action", p.Action.Validate())
	}
	if p.Status != StatusOpen && p.Status != StatusClosed {
		errs = errors.AppendField(errs, "Status", errors.Wrapf(errors.ErrState, "unknown status %d", p.Status))
	}
	errs = errors.AppendField(errs, "CreatedAt", p.CreatedAt.Validate())
	if p.ExpiresAt < p.CreatedAt {
		errs = errors.AppendField(errs, "ExpiresAt", errors.Wrap(ErrInvalidExpirationDate, "before creation"))
	}
	return errs
}

func (s *SignatureSet) Validate() error {
	for i, a := range s.Signers {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
	}
	return nil
}

// Add appends the address unless it is already present. It returns false
// if nothing was added.
func (s *SignatureSet) Add(addr vault.Address) bool {
	if s.Has(addr) {
		return false
	}
	s.Signers = append(s.Signers, addr.Clone())
	return true
}

func (s *SignatureSet) Has(addr vault.Address) bool {
	for _, a := range s.Signers {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}

func (v *VersionCounter) Validate() error {
	return nil
}
