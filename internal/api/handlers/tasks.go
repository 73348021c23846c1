package handlers

import (
	"net/http"

	"go-task-organizer/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateTask creates a task inside the folder named in the path.
func (h *Handler) CreateTask(c *gin.Context) {
	var draft models.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	p, err := models.ParsePriority(string(draft.Priority))
	if err != nil {
		h.respondError(c, err)
		return
	}
	draft.Priority = p

	task, err := h.org.CreateTaskIn(c.Param("id"), draft)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTask returns one task.
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.org.Task(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial field update.
func (h *Handler) UpdateTask(c *gin.Context) {
	var input models.TaskFields
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Priority != nil {
		p, err := models.ParsePriority(string(*input.Priority))
		if err != nil {
			h.respondError(c, err)
			return
		}
		input.Priority = &p
	}

	task, err := h.org.EditFields(c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetDone toggles the completion flag.
func (h *Handler) SetDone(c *gin.Context) {
	var input struct {
		Done *bool `json:"done" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: done is required"})
		return
	}

	task, err := h.org.SetDone(c.Param("id"), *input.Done)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// AddMembership links the task into another folder.
func (h *Handler) AddMembership(c *gin.Context) {
	task, err := h.org.AddMembership(c.Param("id"), c.Param("folderId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// RemoveMembership unlinks the task from a folder. Removing the last
// membership deletes the task.
func (h *Handler) RemoveMembership(c *gin.Context) {
	deleted, err := h.org.RemoveMembership(c.Param("id"), c.Param("folderId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Membership removed",
		"task_deleted": deleted,
	})
}

// MoveTask swaps one membership for another.
func (h *Handler) MoveTask(c *gin.Context) {
	var input struct {
		From string `json:"from_folder_id" binding:"required"`
		To   string `json:"to_folder_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: from_folder_id and to_folder_id are required"})
		return
	}

	task, err := h.org.MoveTask(c.Param("id"), input.From, input.To)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task from every folder.
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.org.DeleteTask(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
