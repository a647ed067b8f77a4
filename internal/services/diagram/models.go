package diagram

// User is the per-account document. SavedUML lists owned diagram ids in
// insertion order.
type User struct {
	SavedUML []string `json:"savedUML"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	return &User{SavedUML: append([]string{}, u.SavedUML...)}
}

// UML is a stored diagram document. Timestamp is unix milliseconds.
type UML struct {
	Content     string `json:"content"`
	Privacy     string `json:"privacy"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
	Diagram     string `json:"diagram"`
}

func (d *UML) clone() *UML {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// Entry is a UML document together with its id, as listing routes return it.
type Entry struct {
	ID string `json:"uml_id"`
	UML
}
