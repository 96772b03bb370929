// Package cities defines the fixed six-city trade topology.
// Every matrix and price vector in the calculator is indexed by these
// city indices; the index-to-name mapping never changes at runtime.
package cities

// Count is the number of trade cities.
const Count = 6

// City indices. The order is fixed and used as the array index everywhere.
const (
	FortSterling = iota
	Lymhurst
	Bridgewatch
	Martlock
	Thetford
	Caerleon
)

var names = [Count]string{
	FortSterling: "Fort Sterling",
	Lymhurst:     "Lymhurst",
	Bridgewatch:  "Bridgewatch",
	Martlock:     "Martlock",
	Thetford:     "Thetford",
	Caerleon:     "Caerleon",
}

var indexByName = func() map[string]int {
	m := make(map[string]int, Count)
	for i, n := range names {
		m[n] = i
	}
	return m
}()

// Name returns the display name for a city index.
// Out-of-range indices return an empty string.
func Name(index int) string {
	if index < 0 || index >= Count {
		return ""
	}
	return names[index]
}

// Index returns the index for a city name and whether the name is known.
func Index(name string) (int, bool) {
	i, ok := indexByName[name]
	return i, ok
}

// Names returns all city names in index order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}
