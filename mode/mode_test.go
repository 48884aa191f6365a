package mode

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromURL(t *testing.T) {
	cases := []struct {
		raw  string
		want Mode
	}{
		{"https://app.example.com/login", Live},
		{"http://app.example.com/login", Test},
		{"https://localhost:3000/", Test},
		{"https://127.0.0.1/", Test},
		{"https://[::1]:8443/", Test},
		{"https://shop.local/", Test},
		{"https://api.dev.test/", Test},
		{"https://preview.localhost/", Test},
		{"https://localhost.example.com/", Live},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		assert.Equal(t, tc.want, FromURL(u), tc.raw)
	}
	assert.Equal(t, Live, FromURL(nil))
}

func TestParse(t *testing.T) {
	assert.Equal(t, Test, Parse("test"))
	assert.Equal(t, Test, Parse(" TEST "))
	assert.Equal(t, Live, Parse("live"))
	assert.Equal(t, Live, Parse(""))
	assert.True(t, Parse("live").IsLive())
}
