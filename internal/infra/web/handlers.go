package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type sourceCreateRequest struct {
	Name    string `json:"name"`
	FeedURL string `json:"feed_url"`
}

func sourceCreateHandler(sourceUC usecase.SourceUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sourceCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		src, err := sourceUC.Subscribe(r.Context(), req.Name, req.FeedURL)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "Name and feed_url are required", http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create source", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, src)
	}
}

func sourcesListHandler(sourceUC usecase.SourceUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := sourceUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list sources", http.StatusInternalServerError)
			return
		}
		if sources == nil {
			sources = []*model.Source{}
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Source `json:"data"`
		}{Data: sources})
	}
}

func sourceGetHandler(sourceUC usecase.SourceUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := sourceUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get source", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, src)
	}
}

func sourceDeleteHandler(sourceUC usecase.SourceUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sourceUC.Unsubscribe(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to delete source", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func itemsListHandler(itemUC usecase.ItemUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		items, err := itemUC.ListBySource(r.Context(), chi.URLParam(r, "id"), limit, offset)
		if err != nil {
			http.Error(w, "Failed to list items", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []*model.Item{}
		}
		writeJSON(w, http.StatusOK, struct {
			Data   []*model.Item `json:"data"`
			Limit  int           `json:"limit"`
			Offset int           `json:"offset"`
		}{Data: items, Limit: limit, Offset: offset})
	}
}

type itemCreateRequest struct {
	SourceID string `json:"source_id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

func itemCreateHandler(itemUC usecase.ItemUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		it, err := itemUC.Register(r.Context(), req.SourceID, req.URL, req.Title)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, "source_id and url are required", http.StatusBadRequest)
			case errors.Is(err, domain.ErrAlreadyExists):
				http.Error(w, "Item already registered", http.StatusConflict)
			default:
				http.Error(w, "Failed to register item", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, it)
	}
}

func itemGetHandler(itemUC usecase.ItemUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := itemUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get item", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

func itemRetryHandler(itemUC usecase.ItemUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := itemUC.Retry(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
			case errors.Is(err, domain.ErrNotRetryable):
				http.Error(w, "Only failed items can be retried", http.StatusConflict)
			default:
				http.Error(w, "Failed to retry item", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func itemDeleteHandler(itemUC usecase.ItemUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := itemUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to delete item", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type askRequest struct {
	Query string `json:"query"`
}

func askHandler(answerUC usecase.AnswerUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		ans, err := answerUC.Ask(r.Context(), req.Query)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, "query is required", http.StatusBadRequest)
			case errors.Is(err, domain.ErrUnavailable):
				http.Error(w, "Answer engine temporarily unavailable", http.StatusServiceUnavailable)
			default:
				http.Error(w, "Failed to answer", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, ans)
	}
}
