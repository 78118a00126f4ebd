package model

import "strings"

// HeaderField is one personal header entry. A scalar value has one element;
// list values such as a first/last name pair keep their order.
type HeaderField struct {
	Key    string
	Values []string
}

// Headers holds the personal header fields in file order.
type Headers struct {
	Fields []HeaderField
}

// Get returns the values stored under key.
func (h *Headers) Get(key string) []string {
	if h == nil {
		return nil
	}
	for _, f := range h.Fields {
		if f.Key == key {
			return f.Values
		}
	}
	return nil
}

// Value returns the values under key joined with a space.
func (h *Headers) Value(key string) string {
	return strings.Join(h.Get(key), " ")
}

// Name is the full name, e.g. "Jane Doe" for name: [Jane, Doe].
func (h *Headers) Name() string { return h.Value("name") }

func (h *Headers) Position() string { return h.Value("position") }
func (h *Headers) Address() string  { return h.Value("address") }
func (h *Headers) Mobile() string   { return h.Value("mobile") }
func (h *Headers) Email() string    { return h.Value("email") }
func (h *Headers) LinkedIn() string { return h.Value("linkedin") }
