package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadview-dev/threadview/internal/api"
	"github.com/threadview-dev/threadview/internal/logger"
	mw "github.com/threadview-dev/threadview/internal/middleware"
	"github.com/threadview-dev/threadview/internal/projection"
	"github.com/threadview-dev/threadview/internal/utils"
)

// GetThread loads (or reloads) the thread view and returns the full
// projection. Partial load failures degrade to a warning; only a missing
// thread is terminal.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// a GET always reloads so repeat visits see new posts
	sess := h.session(threadId)
	loadErr := sess.store.Load(r.Context(), threadId)
	if fatalLoad(loadErr) {
		h.dropSession(threadId)
		utils.WriteError(w, loadErr)
		return
	}
	warning := ""
	if loadErr != nil {
		warning = loadErr.Error()
	}

	// preferences are scoped per client; anonymous clients share the
	// zero client id
	userId, authed := mw.GetUserFromContext(r)
	prefs := sess.prefs.For(userId)
	if mode := r.URL.Query().Get("sort"); mode != "" {
		prefs.SetSortMode(projection.SortMode(mode))
	}

	view, ok := projection.Build(sess.store, prefs, h.renderer)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	resp := api.ThreadViewResponse{View: view, Warning: warning}
	if authed {
		saved, err := h.saved.IsSaved(r.Context(), userId, threadId)
		if err != nil {
			logger.Log.Warn("saved lookup failed", "thread", threadId, "err", err)
		}
		resp.Saved = saved
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// RegisterView counts the view once per client, gated by the durable
// marker. Anonymous clients share the zero client id.
func (h *Handler) RegisterView(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	clientId, _ := mw.GetUserFromContext(r)
	if err := h.view.RegisterView(r.Context(), clientId, threadId); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, ok := mw.GetUserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.saved.Save(r.Context(), userId, threadId); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnsaveThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, ok := mw.GetUserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.saved.Unsave(r.Context(), userId, threadId); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, ok := mw.GetUserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.UpdateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteError(w, err)
		return
	}

	sess := h.session(threadId)
	if err := h.ensureLoaded(r.Context(), sess, threadId); fatalLoad(err) {
		utils.WriteError(w, err)
		return
	}
	if err := sess.thread.UpdateThread(r.Context(), userId, body.Title, body.Category); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, ok := mw.GetUserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sess := h.session(threadId)
	if err := h.ensureLoaded(r.Context(), sess, threadId); fatalLoad(err) {
		utils.WriteError(w, err)
		return
	}
	if err := sess.thread.DeleteThread(r.Context(), userId); err != nil {
		utils.WriteError(w, err)
		return
	}
	h.dropSession(threadId)
	w.WriteHeader(http.StatusNoContent)
}
