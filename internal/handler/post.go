package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/threadview-dev/threadview/internal/api"
	mw "github.com/threadview-dev/threadview/internal/middleware"
	"github.com/threadview-dev/threadview/internal/projection"
	"github.com/threadview-dev/threadview/internal/service"
	"github.com/threadview-dev/threadview/internal/utils"
)

// CastVote toggles the caller's vote on a post. The response carries the
// post's reconciled tally, recomputed from the vote collection.
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := parseIntParam(chi.URLParam(r, "post"), "post ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, ok := mw.GetUserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.CastVoteRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteError(w, err)
		return
	}

	sess := h.session(threadId)
	if err := h.ensureLoaded(r.Context(), sess, threadId); fatalLoad(err) {
		utils.WriteError(w, err)
		return
	}

	if err := sess.vote.Cast(r.Context(), postId, userId, *body.IsLike); err != nil {
		if errors.Is(err, service.ErrVoteInFlight) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		utils.WriteError(w, err)
		return
	}

	counts := projection.CountVotes(sess.store.Votes())
	utils.WriteJSON(w, http.StatusOK, counts[postId])
}

// SubmitReply creates a post under the thread, optionally nested one
// level below a parent.
func (h *Handler) SubmitReply(w http.ResponseWriter, r *http.Request) {
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

	var body api.SubmitReplyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteError(w, err)
		return
	}

	sess := h.session(threadId)
	if err := h.ensureLoaded(r.Context(), sess, threadId); fatalLoad(err) {
		utils.WriteError(w, err)
		return
	}

	created, err := sess.reply.Submit(r.Context(), userId, body.Text, body.ParentId)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.SubmitReplyResponse{Post: created})
}

// ToggleReplies flips the collapse state of one post's reply list for
// the calling client only.
func (h *Handler) ToggleReplies(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := parseIntParam(chi.URLParam(r, "post"), "post ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientId, _ := mw.GetUserFromContext(r)
	sess := h.session(threadId)
	sess.prefs.For(clientId).Toggle(postId)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReportPost(w http.ResponseWriter, r *http.Request) {
	postId, err := parseIntParam(chi.URLParam(r, "post"), "post ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userId, ok := mw.GetUserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.ReportRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.report.Submit(r.Context(), postId, userId, body.Reason, body.Details); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIntParam(chi.URLParam(r, "thread"), "thread ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := parseIntParam(chi.URLParam(r, "post"), "post ID")
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
	if err := sess.thread.DeletePost(r.Context(), userId, postId); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
