package http

import (
	"net/http"

	"contentops-workflow/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type transitionReq struct {
	Intent          approval.Intent `json:"intent"`
	RejectionReason string          `json:"rejection_reason"`
}

type reviewersReq struct {
	EditorReviewerID  *string `json:"editor_reviewer_id"`
	ManagerReviewerID *string `json:"manager_reviewer_id"`
}

type commentReq struct {
	Comment string `json:"comment"`
}

// Create opens a request for a content item, or updates the existing one.
func (h *ApprovalHandler) Create(c echo.Context) error {
	var in approval.CreateInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	dto, err := h.uc.CreateOrUpdate(c.Request().Context(), tenantOf(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApprovalHandler) Queue(c echo.Context) error {
	dto, err := h.uc.Queue(c.Request().Context(), tenantOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), tenantOf(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Transition(c echo.Context) error {
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	dto, err := h.uc.Transition(c.Request().Context(), tenantOf(c), approval.TransitionInput{
		ApprovalRequestID: c.Param("id"),
		Intent:            req.Intent,
		RejectionReason:   req.RejectionReason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) AssignReviewers(c echo.Context) error {
	var req reviewersReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	dto, err := h.uc.AssignReviewers(c.Request().Context(), tenantOf(c), approval.AssignInput{
		ApprovalRequestID: c.Param("id"),
		EditorReviewerID:  req.EditorReviewerID,
		ManagerReviewerID: req.ManagerReviewerID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Comment(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ev, err := h.uc.Comment(c.Request().Context(), tenantOf(c), approval.CommentInput{
		ApprovalRequestID: c.Param("id"),
		Comment:           req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}
