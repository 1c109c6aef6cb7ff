package middleware

import "net/http"

// MethodOverride lets plain HTML forms issue PUT and DELETE requests: a POST
// carrying a "_method" field with one of those verbs is rewritten before
// routing. Only those two verbs are honored; anything else leaves the
// request untouched.
//
// ParseForm is safe to call here — it caches the parsed form on the request,
// so handlers reading r.FormValue later see the same data.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err == nil {
				switch r.PostForm.Get("_method") {
				case http.MethodPut:
					r.Method = http.MethodPut
				case http.MethodDelete:
					r.Method = http.MethodDelete
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
