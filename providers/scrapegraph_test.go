package providers

import "testing"

func TestSanitizeJSONPlainObject(t *testing.T) {
	in := `{"items":[{"title":"a","link":"b"}]}`
	if got := sanitizeJSON(in); got != in {
		t.Errorf("sanitizeJSON(%q) = %q", in, got)
	}
}

func TestSanitizeJSONCodeFence(t *testing.T) {
	in := "```json\n{\"items\":[]}\n```"
	if got := sanitizeJSON(in); got != `{"items":[]}` {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeJSONLeadingNoise(t *testing.T) {
	in := "INFO fetching page\nWARN slow response\n{\"items\":[{\"title\":\"x\",\"link\":\"y\"}]}"
	want := `{"items":[{"title":"x","link":"y"}]}`
	if got := sanitizeJSON(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeJSONFenceWithNoise(t *testing.T) {
	in := "```json\nsome log line\n{\"items\":[]}\n```"
	if got := sanitizeJSON(in); got != `{"items":[]}` {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeJSONStrayQuotes(t *testing.T) {
	in := "'{\"items\":[]}'"
	if got := sanitizeJSON(in); got != `{"items":[]}` {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeJSONArrayFallback(t *testing.T) {
	in := "log noise\n[1,2,3]"
	if got := sanitizeJSON(in); got != "[1,2,3]" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeJSONPrefersLastObject(t *testing.T) {
	in := "{\"broken\": \n{\"items\":[{\"title\":\"t\",\"link\":\"l\"}]}"
	want := `{"items":[{"title":"t","link":"l"}]}`
	if got := sanitizeJSON(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeJSONNoPayload(t *testing.T) {
	for _, in := range []string{"", "   ", "no json here", "{broken"} {
		if got := sanitizeJSON(in); got != "" {
			t.Errorf("sanitizeJSON(%q) = %q, want empty", in, got)
		}
	}
}
