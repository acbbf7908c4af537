package processor

import (
	"sort"
	"sync"
)

const (
	// RewriteProcessorName is the registered name of RewriteSources.
	RewriteProcessorName = "rewrite"
	// RuntimeProcessorName is the registered name of GenerateRuntimeDocs.
	RuntimeProcessorName = "runtime"
)

var (
	registryLock      sync.Mutex
	registeredPlugins = map[string]Processor{
		RewriteProcessorName: RewriteSources,
		RuntimeProcessorName: GenerateRuntimeDocs,
	}
)

// RegisterProcessor registers the given processor under the given name,
// replacing any processor already registered with that name.
func RegisterProcessor(name string, p Processor) {
	if p == nil {
		panic("processor: RegisterProcessor called with nil processor")
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	registeredPlugins[name] = p
}

// LookupProcessor returns the processor registered with the given name.
func LookupProcessor(name string) (Processor, bool) {
	registryLock.Lock()
	defer registryLock.Unlock()
	p, ok := registeredPlugins[name]
	return p, ok
}

// RegisteredProcessorNames returns the names of all registered processors,
// sorted.
func RegisteredProcessorNames() []string {
	registryLock.Lock()
	defer registryLock.Unlock()
	names := make([]string, 0, len(registeredPlugins))
	for name := range registeredPlugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
