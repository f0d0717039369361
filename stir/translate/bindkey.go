package translate

import (
	"sort"
	"strings"

	"github.com/minio/highwayhash"
	"github.com/viant/racegen/rhir"
)

// dedupKey is a fixed HighwayHash key, mirroring inspector/graph/hash.go's
// use of the same library for a content-addressed cache key rather than
// a cryptographic digest.
var dedupKey = []byte("RACEGENBINDINGSDEDUPRACEGENKEY!!")

// bindingHash returns a structural-equality key for a binding set,
// replacing the source system's custom __hash__/__eq__ pair
// (BindingsContainer) used to de-duplicate condition bindings before
// emitting transitions (spec.md §4.2: "Bindings are de-duplicated by
// structural equality before emitting").
func bindingHash(b bindingSet) (uint64, error) {
	keys := make([]rhir.Ref, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	var sb strings.Builder
	for _, k := range keys {
		v := b[k]
		sb.WriteString(refKey(k))
		sb.WriteByte('=')
		sb.WriteString(refKey(v.Msg))
		sb.WriteByte(':')
		sb.WriteString(refKey(v.Value))
		sb.WriteByte(';')
	}

	hasher, err := highwayhash.New64(dedupKey)
	if err != nil {
		return 0, err
	}
	if _, err := hasher.Write([]byte(sb.String())); err != nil {
		return 0, err
	}
	return hasher.Sum64(), nil
}

func refKey(r rhir.Ref) string {
	if r.IsZero() {
		return "_"
	}
	return r.String()
}
