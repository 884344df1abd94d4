// Package credentials exposes capability tokens for platform adapters.
//
// The scheduling core only ever reads tokens through the Provider interface;
// it never writes them back and never logs them. The file-backed store here
// is the default provider for a single-user install. Anything that can hand
// out a Token (an OS keyring bridge, an agent socket) satisfies Provider.
package credentials
