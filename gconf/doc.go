/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package owns a single configuration singleton stored under the "_c:<pkg>"
key. A configuration can be written during genesis (InitConfig) or by an
extension handler (Save) and is read with Load.
*/
package gconf
