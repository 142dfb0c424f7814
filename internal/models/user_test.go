package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "email only",
			user: User{Email: "a@example.com"},
			want: "a@example.com",
		},
		{
			name: "username wins over email",
			user: User{Email: "a@example.com", Username: strPtr("alice")},
			want: "alice",
		},
		{
			name: "full name wraps handle",
			user: User{Email: "a@example.com", Username: strPtr("alice"), FullName: strPtr("Alice A.")},
			want: "Alice A. (alice)",
		},
		{
			name: "empty pointers fall through",
			user: User{Email: "a@example.com", Username: strPtr(""), FullName: strPtr("")},
			want: "a@example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}
