package multisig

import "math/big"

// QuorumReached returns true if signed out of total members satisfy the
// quorum given in basis points. The ratio is compared by cross
// multiplication, signed*10000 >= bps*total, so no rounding happens. A vault
// without members never reaches the quorum.
func QuorumReached(signed, total uint64, bps uint32) bool {
	if total == 0 {
		return false
	}
	lhs := new(big.Int).Mul(new(big.Int).SetUint64(signed), big.NewInt(int64(maxQuorumBps)))
	rhs := new(big.Int).Mul(new(big.Int).SetUint64(total), big.NewInt(int64(bps)))
	return lhs.Cmp(rhs) >= 0
}
