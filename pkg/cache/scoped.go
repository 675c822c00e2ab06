package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis database without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PartitionKey returns the prefixed partition key.
func (k *ScopedKeyer) PartitionKey(graphHash string, opts PartitionKeyOpts) string {
	return k.prefix + k.inner.PartitionKey(graphHash, opts)
}

// TrialsKey returns the prefixed trials key.
func (k *ScopedKeyer) TrialsKey(graphHash string, opts TrialsKeyOpts) string {
	return k.prefix + k.inner.TrialsKey(graphHash, opts)
}
