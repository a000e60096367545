package cache

import "strings"

// KeySeparator is the delimiter between the entity prefix and the key suffix.
const KeySeparator = ":"

// CollectionSuffix names the key holding the full collection of an entity.
const CollectionSuffix = "all"

// KeySerializer builds a cache key from an entity prefix and a suffix
// (an id, a lookup value, or CollectionSuffix).
type KeySerializer interface {
	SerializeKey(prefix, suffix string) string
}

// defaultKeySerializer produces "<prefix>:<suffix>" keys.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer returns the serializer producing "<prefix>:<suffix>".
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

// SerializeKey joins prefix and suffix with KeySeparator. The suffix is used
// verbatim, so a lookup value containing the separator still maps to a
// single key.
func (defaultKeySerializer) SerializeKey(prefix, suffix string) string {
	return prefix + KeySeparator + suffix
}

// namespacedKeySerializer prepends a namespace to every key so several
// deployments can share one cache backend.
type namespacedKeySerializer struct {
	namespace string
	next      KeySerializer
}

// NewNamespacedKeySerializer returns a serializer producing
// "<namespace>:<prefix>:<suffix>". An empty namespace yields the default
// serializer.
func NewNamespacedKeySerializer(namespace string) KeySerializer {
	namespace = strings.TrimSuffix(namespace, KeySeparator)
	if namespace == "" {
		return NewDefaultKeySerializer()
	}
	return namespacedKeySerializer{namespace: namespace, next: NewDefaultKeySerializer()}
}

func (s namespacedKeySerializer) SerializeKey(prefix, suffix string) string {
	return s.namespace + KeySeparator + s.next.SerializeKey(prefix, suffix)
}
