// Entry is a staged or committed file reference
package shared

// Entry pairs a path with the hash of the content recorded for it.
// The same path may appear more than once in a list of entries.
type Entry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Lookup returns the first entry recorded for path.
func Lookup(entries []Entry, path string) (Entry, bool) {
	for _, e := range entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}
