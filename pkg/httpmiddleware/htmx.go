package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Toast levels understood by the storefront page script.
const (
	ToastError   = "error"
	ToastSuccess = "success"
)

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Toast asks htmx to raise a "toast" event with message and, with
// keepContent, to leave the target untouched so the previous content stays
// visible. It must be called before the header is written.
func Toast(w http.ResponseWriter, level, message string, keepContent bool) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("toast")
	e.ObjStart()
	e.FieldStart("level")
	e.Str(level)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	e.ObjEnd()

	w.Header().Set("HX-Trigger", e.String())
	if keepContent {
		w.Header().Set("HX-Reswap", "none")
	}
}
