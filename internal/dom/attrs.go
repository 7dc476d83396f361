package dom

// Attr is a single attribute. An empty Val renders as a bare attribute.
type Attr struct {
	Key string
	Val string
}

// Attributes keeps insertion order; keys are case-sensitive.
type Attributes []Attr

// Attrs builds Attributes from alternating key/value strings.
func Attrs(kv ...string) Attributes {
	out := make(Attributes, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out.Set(kv[i], kv[i+1])
	}
	return out
}

func (a Attributes) index(key string) int {
	for i := range a {
		if a[i].Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	if i := a.index(key); i >= 0 {
		return a[i].Val, true
	}
	return "", false
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	return a.index(key) >= 0
}

// Set updates key in place or appends it.
func (a *Attributes) Set(key, val string) {
	if i := a.index(key); i >= 0 {
		(*a)[i].Val = val
		return
	}
	*a = append(*a, Attr{Key: key, Val: val})
}

// Delete removes key, keeping the order of the rest.
func (a *Attributes) Delete(key string) {
	if i := a.index(key); i >= 0 {
		*a = append((*a)[:i], (*a)[i+1:]...)
	}
}

// Clone copies the attribute list.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// Map returns the attributes as a map, for script conversion.
func (a Attributes) Map() map[string]string {
	out := make(map[string]string, len(a))
	for _, at := range a {
		out[at.Key] = at.Val
	}
	return out
}
