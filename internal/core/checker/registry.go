package checker

import (
	"sort"
	"sync"
)

// CheckFactory builds one probe instance from its catalog spec
type CheckFactory func(Spec) (Check, error)

// process-wide registries; written during bootstrap, read for the lifetime
// of the process
var (
	regMu    sync.RWMutex
	checks   = map[string]CheckFactory{}
	checkers = map[string]*ServiceChecker{}
)

// RegisterCheck binds a probe constructor to its class path.
// Registration is boot-time config, so duplicates and empty keys panic
func RegisterCheck(classPath string, f CheckFactory) {
	if classPath == "" || f == nil {
		panic("checker: RegisterCheck needs a class path and a factory")
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := checks[classPath]; dup {
		panic("checker: duplicate check registration for " + classPath)
	}
	checks[classPath] = f
}

// ResolveCheck returns the factory registered under classPath
func ResolveCheck(classPath string) (CheckFactory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := checks[classPath]
	return f, ok
}

// RegisterChecker adds a service checker declaration under its service key.
// Declarations that fail validation or weight resolution panic, as do
// duplicate keys; registration is boot-time config
func RegisterChecker(sc *ServiceChecker) {
	if sc == nil {
		panic("checker: RegisterChecker needs a declaration")
	}
	if err := sc.Validate(); err != nil {
		panic("checker: " + err.Error())
	}
	if _, err := ResolveWeights(sc.Checks); err != nil {
		panic("checker: " + err.Error())
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := checkers[sc.ServiceKey]; dup {
		panic("checker: duplicate checker registration for " + sc.ServiceKey)
	}
	checkers[sc.ServiceKey] = sc
}

// ResolveChecker returns the declaration registered under serviceKey
func ResolveChecker(serviceKey string) (*ServiceChecker, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	sc, ok := checkers[serviceKey]
	return sc, ok
}

// Checkers returns every registered declaration ordered by service key
func Checkers() []*ServiceChecker {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]*ServiceChecker, 0, len(checkers))
	for _, sc := range checkers {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceKey < out[j].ServiceKey })
	return out
}

// ResetRegistry clears both registries for tests
func ResetRegistry() {
	regMu.Lock()
	defer regMu.Unlock()
	checks = map[string]CheckFactory{}
	checkers = map[string]*ServiceChecker{}
}
