package httpadapter

import (
	"fmt"
	"net/http"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

const assistantFileField = "file"

func (rt *Router) transcript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": rt.assistant.Transcript(userFromContext(r.Context())),
	})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	reply, err := rt.assistant.Ask(r.Context(), userFromContext(r.Context()), req.Text)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) analyzeFile(w http.ResponseWriter, r *http.Request) {
	headers, err := rt.multipartFiles(w, r, assistantFileField)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if len(headers) != 1 {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "analyze file", fmt.Errorf("exactly one %q part is required", assistantFileField)))
		return
	}

	files, closeAll, err := openParts(headers)
	defer closeAll()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	reply, err := rt.assistant.AnalyzeFile(r.Context(), userFromContext(r.Context()), files[0])
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) resetAssistant(w http.ResponseWriter, r *http.Request) {
	rt.assistant.Reset(userFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
