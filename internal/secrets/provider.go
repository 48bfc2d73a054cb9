package secrets

// Provider resolves secret references to their actual values.
type Provider interface {
	// Fetch resolves a secret reference string and returns the secret value.
	Fetch(reference string) (string, error)
}

// ResolveValue resolves a single reference. References whose prefix is not a
// known provider scheme are returned unchanged, so plain tokens may be
// written inline.
func ResolveValue(ref string, providers map[string]Provider) (string, error) {
	prefix, remainder := parseReference(ref)
	if !knownSchemes[prefix] {
		return ref, nil
	}
	provider, ok := providers[prefix]
	if !ok {
		return "", &UnknownProviderError{Prefix: prefix, Reference: ref}
	}
	val, err := provider.Fetch(remainder)
	if err != nil {
		return "", &FetchError{Reference: ref, Err: err}
	}
	return val, nil
}

var knownSchemes = map[string]bool{
	"env":   true,
	"vault": true,
}

// parseReference splits "vault:secret/mcga#token" into ("vault", "secret/mcga#token").
func parseReference(ref string) (prefix string, remainder string) {
	for i, c := range ref {
		if c == ':' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ref
}

// UnknownProviderError is returned when a secret reference uses an unregistered prefix.
type UnknownProviderError struct {
	Prefix    string
	Reference string
}

func (e *UnknownProviderError) Error() string {
	return "unknown secrets provider \"" + e.Prefix + "\" in reference \"" + e.Reference + "\""
}

// FetchError wraps an error from a secrets provider.
type FetchError struct {
	Reference string
	Err       error
}

func (e *FetchError) Error() string {
	return "fetching secret \"" + e.Reference + "\": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
