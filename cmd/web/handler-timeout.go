package main

import (
	"net/http"
	"time"
)

const (
	timeoutPage = `<!doctype html>
<html lang="en">
<head><title>Timeout - Masks of Nyarlathotep</title></head>
<body>
<main>
    <div role="alert" class="banner">
        <p>The request took too long. The archives may still be waking up.</p>
        <a href="">Retry</a>
    </div>
</main>
</body>
</html>
`
	timeoutJSON = `{"error":"request timed out"}`

	// timeoutMargin leaves the handler room to respond before the write deadline of the server closes the
	// connection.
	timeoutMargin = 500 * time.Millisecond
)

// timeoutHandler responds with 503 Service Unavailable when h misses the deadline. The JSON API answers with an
// error body that clients treat as a sleeping backend and retry.
func timeoutHandler(h http.Handler, serverTimeout time.Duration) http.Handler {
	deadline := serverTimeout - timeoutMargin
	page := http.TimeoutHandler(h, deadline, timeoutPage)
	api := http.TimeoutHandler(h, deadline, timeoutJSON)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRequest(r) {
			w.Header().Set("Content-Type", "application/json")
			api.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.ServeHTTP(w, r)
	})
}
