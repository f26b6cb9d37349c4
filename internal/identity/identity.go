package identity

// Mode tells which cart store an identity is bound to.
type Mode int

const (
	ModeAnonymous Mode = iota
	ModeAuthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Identity is the output of the authentication collaborator. Anonymous identities have no ID.
type Identity struct {
	ID   string `json:"id,omitempty"`
	Mode Mode   `json:"-"`
}

func Anonymous() Identity {
	return Identity{Mode: ModeAnonymous}
}

func Authenticated(id string) Identity {
	return Identity{ID: id, Mode: ModeAuthenticated}
}

func (i Identity) IsAuthenticated() bool {
	return i.Mode == ModeAuthenticated && i.ID != ""
}
