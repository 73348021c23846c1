package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BatchResult reports the outcome for one task of a batch operation.
type BatchResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Deleted bool   `json:"deleted,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleBatchOperation applies one operation to several tasks. Each task is
// committed on its own, so a failure on one id leaves the others applied.
func (h *Handler) HandleBatchOperation(c *gin.Context) {
	var input struct {
		Operation string   `json:"operation" binding:"required"`
		TaskIDs   []string `json:"task_ids" binding:"required"`
		FolderID  *string  `json:"folder_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var apply func(id string) (bool, error)
	switch input.Operation {
	case "done", "undone":
		done := input.Operation == "done"
		apply = func(id string) (bool, error) {
			_, err := h.org.SetDone(id, done)
			return false, err
		}
	case "delete":
		apply = func(id string) (bool, error) {
			return true, h.org.DeleteTask(id)
		}
	case "add_folder", "remove_folder":
		if input.FolderID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id is required for " + input.Operation})
			return
		}
		folderID := *input.FolderID
		if input.Operation == "add_folder" {
			apply = func(id string) (bool, error) {
				_, err := h.org.AddMembership(id, folderID)
				return false, err
			}
		} else {
			apply = func(id string) (bool, error) {
				return h.org.RemoveMembership(id, folderID)
			}
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid operation"})
		return
	}

	results := make([]BatchResult, 0, len(input.TaskIDs))
	var affected []string
	for _, id := range input.TaskIDs {
		deleted, err := apply(id)
		if err != nil {
			results = append(results, BatchResult{ID: id, Error: err.Error()})
			continue
		}
		affected = append(affected, id)
		results = append(results, BatchResult{ID: id, Success: true, Deleted: deleted})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Batch operation completed",
		"operation":    input.Operation,
		"affected_ids": affected,
		"results":      results,
	})
}
