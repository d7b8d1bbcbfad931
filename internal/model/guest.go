package model

import "strings"

// Guest is a record held by the Guest Service.
type Guest struct {
    GuestID int64  `json:"guest_id"`
    Name    string `json:"name"`
    Email   string `json:"email"`
    Contact string `json:"contact,omitempty"`
}

// Matches compares name and email case-insensitively, ignoring surrounding
// whitespace.  Contact is not part of a guest's identity.
func (g Guest) Matches(name, email string) bool {
    return strings.EqualFold(strings.TrimSpace(g.Name), strings.TrimSpace(name)) &&
        strings.EqualFold(strings.TrimSpace(g.Email), strings.TrimSpace(email))
}
