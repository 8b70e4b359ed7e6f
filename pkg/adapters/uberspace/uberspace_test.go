package uberspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supreme-majesty/mmm-builder/pkg/adapters"
)

func TestUberspaceAdapter_Identity(t *testing.T) {
	u := NewUberspaceAdapter("lupus", "example")

	assert.Equal(t, "lupus.uberspace.de", u.Host())
	assert.Equal(t, "lupus", u.ShortHostName())
	assert.Equal(t, "example", u.User())
	assert.Equal(t, "example@lupus", adapters.LocalHostID(u))
}

func TestUberspaceAdapter_FullHostNameIsAccepted(t *testing.T) {
	u := NewUberspaceAdapter("lupus.uberspace.de", "example")
	assert.Equal(t, "lupus.uberspace.de", u.Host())
}

func TestUberspaceAdapter_Docroot(t *testing.T) {
	u := NewUberspaceAdapter("lupus", "example")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative", "html/docroot", "/home/example/html/docroot"},
		{"absolute", "/var/www/virtual/example/html", "/var/www/virtual/example/html"},
		{"trailing slash", "html/", "/home/example/html"},
		{"dot segments", "html/../web", "/home/example/web"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.NormalizeDocroot(tt.in))
		})
	}

	assert.Equal(t, "/home/example/html/docroot", u.DefaultDocroot())
}

func TestUberspaceAdapter_AlterHtaccess(t *testing.T) {
	u := NewUberspaceAdapter("lupus", "example")

	in := "<IfModule mod_rewrite.c>\n  RewriteEngine on\n  RewriteRule ^ index.php [L]\n</IfModule>\n"
	want := "<IfModule mod_rewrite.c>\n  RewriteEngine on\n  RewriteBase /\n  RewriteRule ^ index.php [L]\n</IfModule>\n"
	assert.Equal(t, want, u.AlterHtaccess(in))

	// Already present: unchanged.
	assert.Equal(t, want, u.AlterHtaccess(want))

	// No rewrite engine: unchanged.
	assert.Equal(t, "Options -Indexes\n", u.AlterHtaccess("Options -Indexes\n"))
}
