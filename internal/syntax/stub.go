//go:build !cgo

package syntax

// Tree-sitter grammars need cgo. Without it no capability is registered and
// every lookup reports the language as unavailable.
func builtinCapabilities() []Capability {
	return nil
}
