package csvio

import "strings"

// NormalizeHeader strips surrounding ASCII whitespace and fullwidth
// spaces (U+3000) from a header cell.
func NormalizeHeader(s string) string {
	return strings.Trim(s, " \t\r\n　")
}

// HeaderSpec describes the expected header row of an import file.
// Aliases maps the file's column labels to canonical field names.
type HeaderSpec struct {
	Aliases  map[string]string
	Required []string
}

// canonical resolves a normalized column label to its canonical name.
func (s HeaderSpec) canonical(label string) (string, bool) {
	name, ok := s.Aliases[label]
	return name, ok
}

// MapHeaders validates the header row against the spec and returns the
// canonical field name for each column position. Failures are reported
// in a fixed precedence: duplicated columns first, then missing required
// columns, then unknown columns.
func (s HeaderSpec) MapHeaders(headers []string) ([]string, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	seen := make(map[string]int, len(normalized))
	var duplicates []string
	for _, h := range normalized {
		seen[h]++
		if seen[h] == 2 {
			duplicates = append(duplicates, h)
		}
	}
	if len(duplicates) > 0 {
		return nil, &HeaderError{Kind: HeaderDuplicate, Columns: duplicates}
	}

	// A localized label and its canonical name may not both appear:
	// they resolve to the same field, so the later column would
	// silently overwrite the earlier.
	canonicalSeen := make(map[string]int, len(normalized))
	for _, h := range normalized {
		name, ok := s.canonical(h)
		if !ok {
			continue
		}
		canonicalSeen[name]++
		if canonicalSeen[name] == 2 {
			duplicates = append(duplicates, name)
		}
	}
	if len(duplicates) > 0 {
		return nil, &HeaderError{Kind: HeaderDuplicate, Columns: duplicates}
	}

	present := make(map[string]bool, len(normalized))
	for _, h := range normalized {
		if name, ok := s.canonical(h); ok {
			present[name] = true
		}
	}
	var missing []string
	for _, req := range s.Required {
		if !present[req] {
			missing = append(missing, labelFor(s.Aliases, req))
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Kind: HeaderMissing, Columns: missing}
	}

	var unexpected []string
	mapped := make([]string, len(normalized))
	for i, h := range normalized {
		name, ok := s.canonical(h)
		if !ok {
			unexpected = append(unexpected, h)
			continue
		}
		mapped[i] = name
	}
	if len(unexpected) > 0 {
		return nil, &HeaderError{Kind: HeaderUnexpected, Columns: unexpected}
	}

	return mapped, nil
}

// labelFor finds the file label for a canonical name, for error messages.
func labelFor(aliases map[string]string, canonical string) string {
	for label, name := range aliases {
		if name == canonical {
			return label
		}
	}
	return canonical
}
