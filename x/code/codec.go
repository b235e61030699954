package code

import (
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/vault/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// CodeIDLength is the size of a code identifier (a 32 byte hash).
const CodeIDLength = 32

// CodeID identifies a revision of the code. It is represented as hex in
// JSON.
type CodeID []byte

func (c CodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(c))
}

func (c *CodeID) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInput, "code id must be a hex string")
	}
	bz, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "code id: %s", err)
	}
	*c = bz
	return nil
}

// Validate returns an error if the code id is not of the expected size.
func (c CodeID) Validate() error {
	if len(c) != CodeIDLength {
		return errors.Wrapf(errors.ErrInput, "code id must be %d bytes, got %d", CodeIDLength, len(c))
	}
	return nil
}

func (c CodeID) String() string {
	return hex.EncodeToString(c)
}

// Installation is a single entry of the code history.
type Installation struct {
	// Revision counts installations, starting with 1.
	Revision int64  `json:"revision"`
	CodeID   CodeID `json:"code_id"`
}

func (i *Installation) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(i)
}

func (i *Installation) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, i), "installation")
}

// Validate ensures the installation record is sane.
func (i *Installation) Validate() error {
	var errs error
	if i.Revision < 1 {
		errs = errors.AppendField(errs, "Revision", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "CodeID", i.CodeID.Validate())
	return errs
}
