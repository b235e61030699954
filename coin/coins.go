package coin

import (
	"sort"

	"github.com/iov-one/vault/errors"
)

// Coins is a normalized collection of coins: at most one entry per ticker,
// sorted by ticker, zero values removed.
type Coins []*Coin

// CombineCoins creates a Coins containing all the coins passed in. It will
// sort them and combine duplicates to produce a normalized array.
func CombineCoins(cs ...Coin) (Coins, error) {
	var res Coins
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Clone returns a deep copy of the coins.
func (cs Coins) Clone() Coins {
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Balance returns the amount of given currency. Unknown currency has zero
// value.
func (cs Coins) Balance(ticker string) Coin {
	if c, _ := cs.findCoin(ticker); c != nil {
		return *c
	}
	return Coin{Ticker: ticker}
}

// Add modifies the collection by the given coin and returns the new,
// normalized collection. The original collection is not modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	res := cs.Clone()
	if existing, _ := res.findCoin(c.Ticker); existing != nil {
		sum, err := existing.Add(c)
		if err != nil {
			return nil, err
		}
		*existing = sum
		return res, nil
	}
	res = append(res, c.Clone())
	sort.Slice(res, func(i, j int) bool { return res[i].Ticker < res[j].Ticker })
	return res, nil
}

// Subtract removes given amount from the collection. It fails with
// ErrInsufficientAmount if there are not enough funds.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	res := cs.Clone()
	existing, i := res.findCoin(c.Ticker)
	if existing == nil {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "no %s", c.Ticker)
	}
	diff, err := existing.Subtract(c)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	*existing = diff
	return res, nil
}

func (cs Coins) findCoin(ticker string) (*Coin, int) {
	for i, c := range cs {
		if c.Ticker == ticker {
			return c, i
		}
	}
	return nil, -1
}

// IsEmpty returns true if there is no value
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Validate requires that all coins are valid and the collection is
// normalized.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero %s", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrCurrency, "coins not normalized")
		}
	}
	return nil
}
