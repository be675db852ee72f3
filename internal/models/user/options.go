package models

import "strings"

func WithFirstName(name string) UserOption {
	return func(u *User) {
		u.FirstName = strings.TrimSpace(name)
	}
}

func WithLastName(name string) UserOption {
	return func(u *User) {
		u.LastName = strings.TrimSpace(name)
	}
}
