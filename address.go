package blobnet

// Scope is the namespace of a blob address.
type Scope uint8

const (
	// ScopePublic is open addressing: the head chunk is stored in the clear.
	ScopePublic Scope = iota

	// ScopePrivate is owner addressing: the head chunk is sealed with the
	// owning client's key.
	ScopePrivate
)

func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopePrivate:
		return "private"
	}
	return "unknown"
}

// BlobAddress locates a blob: the content hash of its head chunk,
// tagged with a namespace scope.
// BlobAddress is comparable and usable as a map key.
type BlobAddress struct {
	scope Scope
	name  ContentHash
}

// NewBlobAddress produces the address for a head chunk name in the given scope.
func NewBlobAddress(scope Scope, name ContentHash) BlobAddress {
	return BlobAddress{scope: scope, name: name}
}

// NewPublicAddress produces a public address.
func NewPublicAddress(name ContentHash) BlobAddress {
	return NewBlobAddress(ScopePublic, name)
}

// NewPrivateAddress produces a private address.
func NewPrivateAddress(name ContentHash) BlobAddress {
	return NewBlobAddress(ScopePrivate, name)
}

// Name is the content hash of the blob's head chunk, regardless of scope.
func (a BlobAddress) Name() ContentHash { return a.name }

// Scope is the namespace scope of the blob.
func (a BlobAddress) Scope() Scope { return a.scope }

// IsPublic reports whether the address is in the public scope.
func (a BlobAddress) IsPublic() bool { return a.scope == ScopePublic }

// IsPrivate reports whether the address is in the private scope.
func (a BlobAddress) IsPrivate() bool { return a.scope == ScopePrivate }

// Less defines a total order over (scope, name).
func (a BlobAddress) Less(other BlobAddress) bool {
	if a.scope != other.scope {
		return a.scope < other.scope
	}
	return a.name.Less(other.name)
}

func (a BlobAddress) String() string {
	return a.scope.String() + ":" + a.name.String()
}
