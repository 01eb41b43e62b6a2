// Package permission defines the permission bit-set shared by profiles,
// grants and the assignment engine.
package permission

// Set is the four-bit permission value attached to a grant. The invariant
// delete ⇒ write ⇒ read holds for every Set produced by this package.
type Set struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
	Export bool `json:"export"`
}

// SoftDefault is the permission set applied when an access profile carries
// no entry for a category: readable but nothing more. A misconfigured
// profile must not lock a user out, and must never hand out write/delete.
func SoftDefault() Set {
	return Set{Read: true}
}

// Normalize returns the set corrected to satisfy delete ⇒ write ⇒ read.
// Correction is downward: an implied bit that is missing is switched on
// rather than the granting bit being revoked, because Normalize runs on
// values that were just granted interactively.
func (s Set) Normalize() Set {
	if s.Delete {
		s.Write = true
	}
	if s.Write {
		s.Read = true
	}
	return s
}

// Valid reports whether the set already satisfies the invariant.
func (s Set) Valid() bool {
	if s.Delete && !s.Write {
		return false
	}
	if s.Write && !s.Read {
		return false
	}
	return true
}

// WithRead toggles the read bit. Revoking read revokes write and delete.
func (s Set) WithRead(v bool) Set {
	s.Read = v
	if !v {
		s.Write = false
		s.Delete = false
	}
	return s
}

// WithWrite toggles the write bit. Granting write implies read; revoking
// write revokes delete.
func (s Set) WithWrite(v bool) Set {
	s.Write = v
	if v {
		s.Read = true
	} else {
		s.Delete = false
	}
	return s
}

// WithDelete toggles the delete bit. Granting delete implies write and read.
func (s Set) WithDelete(v bool) Set {
	s.Delete = v
	if v {
		s.Write = true
		s.Read = true
	}
	return s
}

// WithExport toggles the export bit, which is independent of the others.
func (s Set) WithExport(v bool) Set {
	s.Export = v
	return s
}
