package query

import "testing"

type BlogPost struct{}

type HTTPServer struct{}

func TestModelOf(t *testing.T) {
	if got := ModelOf[BlogPost](); got != "blog_posts" {
		t.Errorf("ModelOf[BlogPost]() = %q", got)
	}
	if got := ModelOf[*BlogPost](); got != "blog_posts" {
		t.Errorf("ModelOf[*BlogPost]() = %q", got)
	}
	if got := ModelOf[HTTPServer](); got != "http_servers" {
		t.Errorf("ModelOf[HTTPServer]() = %q", got)
	}
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"User":           "user",
		"UserProfile":    "user_profile",
		"APIKey":         "api_key",
		"UserV2":         "user_v2",
		"List[pkg.User]": "list_pkg_user",
		"already_snake":  "already_snake",
		"with-dash":      "with_dash",
	}

	for in, want := range tests {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
