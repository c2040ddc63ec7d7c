package e2etest

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/myrjola/masks/internal/errors"
)

// unsafeCookieJar keeps Secure cookies for plain HTTP test servers.
type unsafeCookieJar struct {
	*cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}
	return &unsafeCookieJar{Jar: jar}, nil
}

func (u *unsafeCookieJar) SetCookies(url *url.URL, cookies []*http.Cookie) {
	relaxed := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		c.Secure = false
		relaxed = append(relaxed, &c)
	}
	u.Jar.SetCookies(url, relaxed)
}

// Cookie returns the cookie name that the client would send to the server, e.g., "session".
func (c *Client) Cookie(name string) (*http.Cookie, bool) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, false
	}
	for _, cookie := range c.client.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return nil, false
}
