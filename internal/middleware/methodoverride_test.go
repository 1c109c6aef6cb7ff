package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func overriddenMethod(t *testing.T, method string, form url.Values) string {
	t.Helper()

	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Method
	})

	req := httptest.NewRequest(method, "/posts/abc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	MethodOverride(inner).ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name   string
		method string
		form   url.Values
		want   string
	}{
		{"post to put", http.MethodPost, url.Values{"_method": {"PUT"}}, http.MethodPut},
		{"post to delete", http.MethodPost, url.Values{"_method": {"DELETE"}}, http.MethodDelete},
		{"plain post untouched", http.MethodPost, url.Values{"title": {"x"}}, http.MethodPost},
		{"unknown verb ignored", http.MethodPost, url.Values{"_method": {"PATCH"}}, http.MethodPost},
		{"get never rewritten", http.MethodGet, url.Values{"_method": {"DELETE"}}, http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overriddenMethod(t, tt.method, tt.form); got != tt.want {
				t.Errorf("method = %s, want %s", got, tt.want)
			}
		})
	}
}

// The override must not eat the form body: handlers still read the other
// fields after ParseForm ran in the middleware.
func TestMethodOverride_PreservesForm(t *testing.T) {
	var gotTitle string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.FormValue("title")
	})

	form := url.Values{"_method": {"PUT"}, "title": {"Hello"}}
	req := httptest.NewRequest(http.MethodPost, "/posts/abc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	MethodOverride(inner).ServeHTTP(httptest.NewRecorder(), req)

	if gotTitle != "Hello" {
		t.Errorf("title = %q, want %q", gotTitle, "Hello")
	}
}
