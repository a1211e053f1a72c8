package fixtures

import (
	utilrand "k8s.io/apimachinery/pkg/util/rand"
)

const (
	letterBytes = "abcdefghijklmnopqrstuvwxyz"
	digitBytes  = "0123456789"
)

// RandomString returns letters lowercase letters and digits digits in random
// order.
func RandomString(letters int, digits int) string {
	b := make([]byte, 0, letters+digits)
	for i := 0; i < letters; i++ {
		b = append(b, letterBytes[utilrand.Intn(len(letterBytes))])
	}
	for i := 0; i < digits; i++ {
		b = append(b, digitBytes[utilrand.Intn(len(digitBytes))])
	}
	shuffled := make([]byte, len(b))
	for i, j := range utilrand.Perm(len(b)) {
		shuffled[i] = b[j]
	}
	return string(shuffled)
}

// TestingNamespaceName returns a fresh namespace name carrying marker, so
// that teardown picks it up.
func TestingNamespaceName(marker string) string {
	return marker + RandomString(4, 2)
}
