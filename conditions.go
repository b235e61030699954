package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iov-one/vault/crypto/bech32"
	"github.com/iov-one/vault/errors"
)

const (
	// AddressLength is the length of all addresses.
	AddressLength = 20

	// AddressHRP is the human readable prefix used when an address is
	// encoded with bech32.
	AddressHRP = "vault"
)

// ZeroAddress is the reserved null identity. It can be decoded and
// displayed like any other address, but no key can ever produce it, so it
// must never be accepted as an owner of anything.
var ZeroAddress = Address(make([]byte, AddressLength))

// it must have (?s) flags, otherwise it errors when last section contains 0x20 (newline)
var perm = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.*)$`)

// Condition is a specially formatted array, containing
// information on who can authorize an action.
// It is of the format:
//
//   sprintf("%s/%s/%s", extension, type, data)
type Condition []byte

// NewCondition builds a condition owned by an extension.
func NewCondition(ext, typ string, data []byte) Condition {
	pre := fmt.Sprintf("%s/%s/", ext, typ)
	return append([]byte(pre), data...)
}

// Parse will extract the sections from the Condition bytes
// and verify it is properly formatted
func (c Condition) Parse() (string, string, []byte, error) {
	chunks := perm.FindSubmatch(c)
	if len(chunks) == 0 {
		return "", "", nil, errors.ErrInput.Newf("condition: %X", []byte(c))
	}
	// returns [all, match1, match2, match3]
	return string(chunks[1]), string(chunks[2]), chunks[3], nil
}

// Address will convert a Condition into an Address
func (c Condition) Address() Address {
	return NewAddress(c)
}

// Equals checks if two permissions are the same
func (c Condition) Equals(b Condition) bool {
	return bytes.Equal(c, b)
}

// String returns a human readable string.
// We keep the extension and type in ascii and
// hex-encode the binary data
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// Validate returns an error if the Condition is not the proper format
func (c Condition) Validate() error {
	if !perm.Match(c) {
		return errors.ErrInput.Newf("condition: %X", []byte(c))
	}
	return nil
}

// Address represents a collision-free, one-way digest of a Condition.
//
// It will be of size AddressLength
type Address []byte

// NewAddress hashes and truncates into the proper size
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	h := sha256.Sum256(data)
	return h[:AddressLength]
}

// ParseAddress accepts an address in any of the supported human readable
// formats. A format can be explicitly requested with a prefix:
//
//   hex:C1721181E83376EF978AA4A9A38A5E27C08C7BB2
//   bech32:vault1c9eprq0gxdmwl9u25j568zj7ylqgc7ajyu8wxr
//   cond:multisig/vault/
//
// Without a prefix hex is assumed, unless the value starts with the bech32
// human readable part.
func ParseAddress(enc string) (Address, error) {
	format, data := "hex", enc
	if chunks := strings.SplitN(enc, ":", 2); len(chunks) == 2 {
		format, data = chunks[0], chunks[1]
	} else if strings.HasPrefix(enc, AddressHRP+"1") {
		format = "bech32"
	}

	switch format {
	case "hex":
		raw, err := hex.DecodeString(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
		addr := Address(raw)
		return addr, addr.Validate()
	case "bech32":
		_, raw, err := bech32.Decode(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		addr := Address(raw)
		return addr, addr.Validate()
	case "cond":
		var c Condition
		if err := c.deserialize(data); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c.Address(), nil
	default:
		return nil, errors.ErrType.Newf("unknown format %q", format)
	}
}

// deserialize from human readable string.
func (c *Condition) deserialize(source string) error {
	args := strings.SplitN(source, "/", 3)
	if len(args) != 3 {
		return errors.ErrInput.New("invalid condition format")
	}
	data, err := hex.DecodeString(args[2])
	if err != nil {
		return errors.ErrInput.Newf("malformed condition data: %s", err)
	}
	*c = NewCondition(args[0], args[1], data)
	return nil
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// IsZero returns true for the reserved null identity.
func (a Address) IsZero() bool {
	return a.Equals(ZeroAddress)
}

// Clone returns a copy that does not share the underlying array.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address(nil), a...)
}

// MarshalJSON provides a hex representation for JSON,
// to override the standard base64 []byte encoding
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts every format understood by ParseAddress. An empty
// string is decoded as a nil address.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	if enc == "" {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// String returns a human readable string.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Bech32 returns the address encoded with the AddressHRP prefix.
func (a Address) Bech32() string {
	raw, err := bech32.Encode(AddressHRP, a)
	if err != nil {
		return a.String()
	}
	return string(raw)
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.ErrInput.Newf("address: %v", []byte(a))
	}
	return nil
}
