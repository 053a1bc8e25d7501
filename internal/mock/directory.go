package mock

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

// DirectoryObject is one hierarchical directory entry. The distinguished
// name carries the hierarchy: an object's parent is its DN minus the first
// component.
type DirectoryObject struct {
	DN         string
	Properties map[string]string
}

// EventLogEntry is one append-only log record.
type EventLogEntry struct {
	LogName   string
	ID        int
	Level     string
	Message   string
	Timestamp time.Time
}

// eventLogCapacity bounds the ring buffer per store.
const eventLogCapacity = 1024

// DirectoryStore simulates a directory service plus its event log.
type DirectoryStore struct {
	objects map[string]*DirectoryObject
	events  []EventLogEntry
	nextID  int
}

// NewDirectoryStore creates an empty directory store.
func NewDirectoryStore() *DirectoryStore {
	s := &DirectoryStore{}
	s.Reset()
	return s
}

// Reset removes all objects and log entries.
func (s *DirectoryStore) Reset() {
	s.objects = map[string]*DirectoryObject{}
	s.events = nil
	s.nextID = 1
}

// Add inserts an object. Duplicate DNs are an error.
func (s *DirectoryStore) Add(dn string, properties map[string]string) (*DirectoryObject, error) {
	dn = normalizeDN(dn)
	if dn == "" {
		return nil, fmt.Errorf("distinguished name must not be empty")
	}
	if _, exists := s.objects[dn]; exists {
		return nil, sgerrors.NewMockIntegrityError("directory", dn, "object already exists")
	}
	obj := &DirectoryObject{DN: dn, Properties: map[string]string{}}
	for k, v := range properties {
		obj.Properties[strings.ToLower(k)] = v
	}
	s.objects[dn] = obj
	return obj, nil
}

// Get returns the object at dn or a domain error naming it.
func (s *DirectoryStore) Get(dn string) (*DirectoryObject, error) {
	obj, ok := s.objects[normalizeDN(dn)]
	if !ok {
		return nil, sgerrors.NewMockIntegrityError("directory", dn, "no such object")
	}
	return obj, nil
}

// Remove deletes the object at dn. It refuses while children exist.
func (s *DirectoryStore) Remove(dn string) error {
	dn = normalizeDN(dn)
	if _, ok := s.objects[dn]; !ok {
		return sgerrors.NewMockIntegrityError("directory", dn, "no such object")
	}
	for other := range s.objects {
		if other != dn && strings.HasSuffix(other, ","+dn) {
			return sgerrors.NewMockIntegrityError("directory", dn, "object still has children")
		}
	}
	delete(s.objects, dn)
	return nil
}

// Search evaluates filter against every object under base (the base itself
// included) and returns matches sorted by DN. An empty base searches the
// whole directory.
func (s *DirectoryStore) Search(base, filter string) ([]*DirectoryObject, error) {
	f, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}
	base = normalizeDN(base)

	var out []*DirectoryObject
	for dn, obj := range s.objects {
		if base != "" && dn != base && !strings.HasSuffix(dn, ","+base) {
			continue
		}
		if f.matches(obj) {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DN < out[j].DN })
	return out, nil
}

// AppendEvent records an entry, dropping the oldest once the ring buffer is
// full. IDs increase monotonically.
func (s *DirectoryStore) AppendEvent(logName, level, message string) EventLogEntry {
	entry := EventLogEntry{
		LogName:   logName,
		ID:        s.nextID,
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	s.nextID++
	s.events = append(s.events, entry)
	if len(s.events) > eventLogCapacity {
		s.events = s.events[len(s.events)-eventLogCapacity:]
	}
	return entry
}

// Events returns up to max entries of the named log, newest first. max <= 0
// returns all retained entries.
func (s *DirectoryStore) Events(logName string, max int) []EventLogEntry {
	var out []EventLogEntry
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].LogName != logName {
			continue
		}
		out = append(out, s.events[i])
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

func normalizeDN(dn string) string {
	parts := strings.Split(dn, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

// filter is one node of the simplified search grammar:
//
//	filter     = "(" expression ")"
//	expression = "&" filter+ | "|" filter+ | "!" filter | attr "=" value
//
// Values may contain "*" wildcards. Attribute matching is case-insensitive.
type filter struct {
	op       byte // '&', '|', '!', or 0 for a leaf comparison
	attr     string
	value    string
	children []*filter
}

func parseFilter(s string) (*filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty search filter")
	}
	f, rest, err := parseFilterGroup(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("unexpected trailing filter text %q", rest)
	}
	return f, nil
}

func parseFilterGroup(s string) (*filter, string, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || s[0] != '(' {
		return nil, "", fmt.Errorf("search filter must start with '('")
	}
	body := s[1:]
	if len(body) == 0 {
		return nil, "", fmt.Errorf("unterminated search filter")
	}

	switch body[0] {
	case '&', '|':
		op := body[0]
		rest := body[1:]
		node := &filter{op: op}
		for strings.TrimSpace(rest) != "" && strings.TrimSpace(rest)[0] == '(' {
			child, r, err := parseFilterGroup(rest)
			if err != nil {
				return nil, "", err
			}
			node.children = append(node.children, child)
			rest = r
		}
		if len(node.children) == 0 {
			return nil, "", fmt.Errorf("composite filter %q has no operands", string(op))
		}
		rest = strings.TrimSpace(rest)
		if len(rest) == 0 || rest[0] != ')' {
			return nil, "", fmt.Errorf("unterminated composite filter")
		}
		return node, rest[1:], nil
	case '!':
		child, rest, err := parseFilterGroup(body[1:])
		if err != nil {
			return nil, "", err
		}
		rest = strings.TrimSpace(rest)
		if len(rest) == 0 || rest[0] != ')' {
			return nil, "", fmt.Errorf("unterminated negation filter")
		}
		return &filter{op: '!', children: []*filter{child}}, rest[1:], nil
	default:
		end := strings.IndexByte(body, ')')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated search filter")
		}
		leaf := body[:end]
		eq := strings.IndexByte(leaf, '=')
		if eq <= 0 {
			return nil, "", fmt.Errorf("comparison %q must be attr=value", leaf)
		}
		return &filter{
			attr:  strings.ToLower(strings.TrimSpace(leaf[:eq])),
			value: strings.TrimSpace(leaf[eq+1:]),
		}, body[end+1:], nil
	}
}

func (f *filter) matches(obj *DirectoryObject) bool {
	switch f.op {
	case '&':
		for _, c := range f.children {
			if !c.matches(obj) {
				return false
			}
		}
		return true
	case '|':
		for _, c := range f.children {
			if c.matches(obj) {
				return true
			}
		}
		return false
	case '!':
		return !f.children[0].matches(obj)
	default:
		v, ok := obj.Properties[f.attr]
		if !ok {
			return false
		}
		return wildcardMatch(strings.ToLower(f.value), strings.ToLower(v))
	}
}

// wildcardMatch supports '*' spans in pattern against value.
func wildcardMatch(pattern, value string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == value
	}
	if !strings.HasPrefix(value, parts[0]) {
		return false
	}
	value = value[len(parts[0]):]
	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(value, parts[i])
		if idx < 0 {
			return false
		}
		value = value[idx+len(parts[i]):]
	}
	return strings.HasSuffix(value, parts[len(parts)-1])
}
