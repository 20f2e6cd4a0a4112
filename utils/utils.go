package utils

import "math/rand"

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// ContainsInt returns true iff the provided int slice hay contains int needle.
func ContainsInt(hay []int, needle int) bool {
	for _, n := range hay {
		if n == needle {
			return true
		}
	}
	return false
}

// RandomAlphabetString generates a random lowercase alphabet-only string of
// the given length.
func RandomAlphabetString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
