/*
Package app contains the building blocks of an application: routing
messages to handlers, chaining decorators, loading the genesis and running
transactions against a committed store.
*/
package app
