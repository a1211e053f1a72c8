package common

// KnownShareKinds returns the shared resource kinds removed during teardown,
// in teardown order.
func KnownShareKinds() []ShareKind {
	return []ShareKind{ShareConfigMap, ShareSecret}
}
