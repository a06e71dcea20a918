package backend

import (
	"strings"

	"github.com/tidwall/btree"
)

// ChildNames returns the names of the direct children of dir found in an
// ordered key index, in index order.
func ChildNames[V any](keys *btree.Map[string, V], dir string) []string {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	names := make([]string, 0)
	keys.Ascend(prefix, func(key string, _ V) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}

		rest := key[len(prefix):]
		if rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
		return true
	})

	return names
}

// Subtree returns key and every key below it found in an ordered key index.
func Subtree[V any](keys *btree.Map[string, V], key string) []string {
	var result []string
	if _, ok := keys.Get(key); ok {
		result = append(result, key)
	}

	prefix := key + "/"
	keys.Ascend(prefix, func(k string, _ V) bool {
		if !strings.HasPrefix(k, prefix) {
			return false
		}
		result = append(result, k)
		return true
	})

	return result
}
