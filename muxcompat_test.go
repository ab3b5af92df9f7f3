package evolution

import (
	"net/http"
	"strings"
)

// testMux lets the resource tests keep their method-qualified patterns
// ("POST /instance/create") when built with a Go 1.21 toolchain, whose
// http.ServeMux does not parse them yet. Patterns without a method
// prefix are registered as-is; qualified ones are registered on the
// path with the method enforced the way the Go 1.22 ServeMux does,
// answering 405 on a mismatch.
type testMux struct {
	*http.ServeMux
}

func newTestMux() *testMux {
	return &testMux{ServeMux: http.NewServeMux()}
}

func (m *testMux) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok || strings.Contains(method, "/") {
		m.ServeMux.HandleFunc(pattern, handler)
		return
	}
	m.ServeMux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	})
}
