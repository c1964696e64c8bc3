package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseURLResolver(t *testing.T) {
	r := NewBaseURLResolver("https://cdn.example.com/media/")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"relative", "thumbs/1.jpg", "https://cdn.example.com/media/thumbs/1.jpg"},
		{"leading slash", "/avatars/a.png", "https://cdn.example.com/media/avatars/a.png"},
		{"absolute", "https://other.example.com/x.png", "https://other.example.com/x.png"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveURL(tt.ref))
		})
	}
}

func TestBaseURLResolver_NoBase(t *testing.T) {
	assert.Equal(t, "thumbs/1.jpg", NewBaseURLResolver("").ResolveURL("thumbs/1.jpg"))
}
