package model

// ContactSnapshot duplicates the linked contact's display fields on the
// opportunity so cards render without a join against the remote system.
type ContactSnapshot struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name" bson:"name"`
	CompanyName string   `json:"companyName" bson:"companyName"`
	Email       string   `json:"email" bson:"email"`
	Phone       string   `json:"phone" bson:"phone"`
	Tags        []string `json:"tags" bson:"tags"`
	Followers   []string `json:"followers" bson:"followers"`
}

// IsEmpty reports whether the snapshot carries no display data. Records written
// before the nested contact object existed have an empty snapshot and flat
// fields instead.
func (c ContactSnapshot) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == "" && c.CompanyName == ""
}
