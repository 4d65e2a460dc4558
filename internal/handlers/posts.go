package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"POSTS_BACK-END/internal/dto"
	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/repository"
	"POSTS_BACK-END/internal/utils"
)

const maxListLimit = 100

// PostsHandler manages post-related endpoints. All routes require the
// auth middleware.
type PostsHandler struct {
	posts PostStore
}

// NewPostsHandler creates a new PostsHandler
func NewPostsHandler(posts PostStore) *PostsHandler {
	return &PostsHandler{posts: posts}
}

func toPostResponse(p *models.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		OwnerID:   p.OwnerID,
		CreatedAt: utils.FormatTimestamp(p.CreatedAt),
	}
}

// decodePostInput reads and validates a create/update body. It writes the
// 400 response itself and reports false on failure.
func decodePostInput(w http.ResponseWriter, r *http.Request) (models.PostInput, bool) {
	var req dto.PostRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return models.PostInput{}, false
	}

	// Blank input is rejected, but accepted text is stored byte for byte.
	in := models.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: true,
	}
	if req.Published != nil {
		in.Published = *req.Published
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title and content are required")
		return models.PostInput{}, false
	}
	return in, true
}

func postNotFound(w http.ResponseWriter, id int64) {
	utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", fmt.Sprintf("post with id: %d does not exist", id))
}

func notOwner(w http.ResponseWriter) {
	utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Not authorized to perform requested action")
}

// ListPosts handles GET /posts
// @Summary List posts
// @Description Returns posts of every owner in id order
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max items (1-100), all when omitted"
// @Param offset query int false "offset"
// @Param search query string false "case-insensitive title substring"
// @Success 200 {array} dto.PostResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /posts [get]
func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PostFilter{Search: strings.TrimSpace(q.Get("search"))}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = min(n, maxListLimit)
		}
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	posts, err := h.posts.List(r.Context(), filter)
	if err != nil {
		writeServerError(w, r, "ListPosts", err)
		return
	}

	items := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, toPostResponse(&posts[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, items)
}

// GetPost handles GET /posts/{id}
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid post id", "id must be an integer")
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			postNotFound(w, id)
			return
		}
		writeServerError(w, r, "GetPost", err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toPostResponse(post))
}

// CreatePost handles POST /posts
// @Summary Create a post
// @Description The authenticated user becomes the owner
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PostRequest true "Post payload"
// @Success 201 {object} dto.PostResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /posts [post]
func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	in, ok := decodePostInput(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Create(r.Context(), userID, in)
	if err != nil {
		writeServerError(w, r, "CreatePost", err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, toPostResponse(post))
}

// UpdatePost handles PUT /posts/{id}
// @Summary Replace a post
// @Description Only the owner may update. published defaults to true when omitted.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param payload body dto.PostRequest true "Post payload"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	id, ok := pathID(r)
	if !ok {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid post id", "id must be an integer")
		return
	}

	in, ok := decodePostInput(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Update(r.Context(), id, userID, in)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			postNotFound(w, id)
		case errors.Is(err, repository.ErrNotOwner):
			notOwner(w)
		default:
			writeServerError(w, r, "UpdatePost", err)
		}
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toPostResponse(post))
}

// DeletePost handles DELETE /posts/{id}
// @Summary Delete a post
// @Description Only the owner may delete
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	id, ok := pathID(r)
	if !ok {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid post id", "id must be an integer")
		return
	}

	if err := h.posts.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			postNotFound(w, id)
		case errors.Is(err, repository.ErrNotOwner):
			notOwner(w)
		default:
			writeServerError(w, r, "DeletePost", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
