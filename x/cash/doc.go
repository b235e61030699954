/*
Package cash defines a simple implementation of sending coins
between wallets.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. The multisig vault holds its funds in a cash
wallet and moves them with the Controller.
*/
package cash
