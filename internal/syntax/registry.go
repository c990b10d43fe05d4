package syntax

import (
	"runtime/debug"
	"sort"
	"sync"
)

// grammarModule is the module providing the bundled grammars.
const grammarModule = "github.com/smacker/go-tree-sitter"

// Capability is a parser bound to one file extension.
type Capability struct {
	Extension      string
	Language       Language
	GrammarVersion string
	Parser         Parser
}

// Registry maps file extensions to parse capabilities. It is populated once
// and read concurrently afterwards.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

// NewRegistry returns a registry holding every grammar this build can load.
// Builds without cgo return an empty registry.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	version := grammarVersion()
	for _, c := range builtinCapabilities() {
		c.GrammarVersion = version
		r.Register(c)
	}
	return r
}

// NewEmptyRegistry returns a registry with no capabilities.
func NewEmptyRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register adds or replaces the capability for c.Extension.
func (r *Registry) Register(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Extension] = c
}

// Lookup returns the capability registered for ext.
func (r *Registry) Lookup(ext string) (Capability, bool) {
	if r == nil {
		return Capability{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[ext]
	return c, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.caps))
	for ext := range r.caps {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// grammarVersion reports the grammar module version from build info.
func grammarVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == grammarModule {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return ""
}
