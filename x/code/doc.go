/*
Package code keeps track of the code revision the vault is running.

Every installation is recorded in an append only history, the most recent
entry being the current code. The multisig extension installs new code
when an upgrade proposal is executed.
*/
package code
