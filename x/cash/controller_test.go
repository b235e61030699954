package cash

import (
	"math"
	"testing"

	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/weavetest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestController(t *testing.T) {
	Convey("Test controller works as intended", t, func() {
		kv := store.MemStore()
		bucket := NewBucket()
		ctrl := NewController(bucket)

		addr := weavetest.RandomAddr(t)
		addr2 := weavetest.RandomAddr(t)
		addr3 := weavetest.RandomAddr(t)

		bank := coin.NewCoin(50000, "MONY")
		send := coin.NewCoin(300, "MONY")

		Convey("Empty wallet cannot send", func() {
			err := ctrl.MoveCoins(kv, addr, addr2, send)
			So(errors.ErrEmpty.Is(err), ShouldBeTrue)
			_, err = ctrl.Balance(kv, addr)
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)
		})

		Convey("When money is issued", func() {
			So(ctrl.IssueCoins(kv, addr, bank), ShouldBeNil)

			balance, err := ctrl.Balance(kv, addr)
			So(err, ShouldBeNil)
			So(balance, ShouldResemble, coin.Coins{&bank})

			Convey("Proper move updates both wallets", func() {
				So(ctrl.MoveCoins(kv, addr, addr2, send), ShouldBeNil)

				w, err := bucket.Get(kv, addr)
				So(err, ShouldBeNil)
				So(w.Contains(coin.NewCoin(49700, "MONY")), ShouldBeTrue)
				So(w.Contains(bank), ShouldBeFalse)

				w2, err := bucket.Get(kv, addr2)
				So(err, ShouldBeNil)
				So(w2.Contains(send), ShouldBeTrue)

				w3, err := bucket.Get(kv, addr3)
				So(err, ShouldBeNil)
				So(w3, ShouldBeNil)

				Convey("Sending everything removes the wallet", func() {
					So(ctrl.MoveCoins(kv, addr2, addr3, send), ShouldBeNil)
					w2, err := bucket.Get(kv, addr2)
					So(err, ShouldBeNil)
					So(w2, ShouldBeNil)
					w3, err := bucket.Get(kv, addr3)
					So(err, ShouldBeNil)
					So(w3.Contains(send), ShouldBeTrue)
				})
			})

			Convey("Cannot send zero", func() {
				err := ctrl.MoveCoins(kv, addr, addr2, coin.NewCoin(0, "MONY"))
				So(errors.ErrAmount.Is(err), ShouldBeTrue)
			})

			Convey("Cannot send too much", func() {
				err := ctrl.MoveCoins(kv, addr, addr2, coin.NewCoin(50001, "MONY"))
				So(errors.ErrInsufficientAmount.Is(err), ShouldBeTrue)
			})

			Convey("Cannot send a currency that is not owned", func() {
				err := ctrl.MoveCoins(kv, addr, addr2, coin.NewCoin(5, "BAD"))
				So(errors.ErrInsufficientAmount.Is(err), ShouldBeTrue)
			})

			Convey("Moving to self keeps the balance", func() {
				So(ctrl.MoveCoins(kv, addr, addr, send), ShouldBeNil)
				balance, err := ctrl.Balance(kv, addr)
				So(err, ShouldBeNil)
				So(balance, ShouldResemble, coin.Coins{&bank})
			})

			Convey("Issuing an overflowing amount fails", func() {
				err := ctrl.IssueCoins(kv, addr, coin.NewCoin(math.MaxUint64, "MONY"))
				So(errors.ErrOverflow.Is(err), ShouldBeTrue)
				balance, err := ctrl.Balance(kv, addr)
				So(err, ShouldBeNil)
				So(balance, ShouldResemble, coin.Coins{&bank})
			})

			Convey("Another currency is kept separately", func() {
				other := coin.NewCoin(7, "ETH")
				So(ctrl.IssueCoins(kv, addr, other), ShouldBeNil)
				balance, err := ctrl.Balance(kv, addr)
				So(err, ShouldBeNil)
				So(balance, ShouldResemble, coin.Coins{&other, &bank})
			})
		})
	})
}
