package handlers

import (
	"net/http"

	"go-task-organizer/internal/models"
	"go-task-organizer/internal/organizer"
	"go-task-organizer/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetTree returns the nested folder tree with tasks. hide_done=true leaves
// out completed tasks.
func (h *Handler) GetTree(c *gin.Context) {
	tree, err := h.org.Tree()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if utils.ParseBoolOption(c.Query("hide_done")) {
		hideDone(tree)
	}
	c.JSON(http.StatusOK, tree)
}

func hideDone(n *organizer.TreeNode) {
	pending := n.Tasks[:0]
	for _, t := range n.Tasks {
		if !t.IsDone {
			pending = append(pending, t)
		}
	}
	n.Tasks = pending
	for _, child := range n.Children {
		hideDone(child)
	}
}

// CreateFolder handles folder creation
func (h *Handler) CreateFolder(c *gin.Context) {
	var input struct {
		Name     string  `json:"name"`
		Details  *string `json:"details"`
		ParentID *string `json:"parent_id,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// Default to the root when no parent is given
	parentID := ""
	if input.ParentID != nil {
		parentID = *input.ParentID
	} else {
		root, err := h.org.EnsureRoot()
		if err != nil {
			h.respondError(c, err)
			return
		}
		parentID = root.ID
	}

	folder, err := h.org.CreateSubfolder(parentID, input.Name, input.Details)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, folder)
}

// ListFolders handles listing all folders sorted by name
func (h *Handler) ListFolders(c *gin.Context) {
	folders := h.org.QueryFolders()
	parentID := c.Query("parent_id")

	// Apply parent folder filter
	if parentID != "" {
		filtered := folders[:0]
		for _, f := range folders {
			switch {
			case parentID == "root" && f.IsRoot():
				filtered = append(filtered, f)
			case f.ParentID != nil && *f.ParentID == parentID:
				filtered = append(filtered, f)
			}
		}
		folders = filtered
	}

	total := len(folders)
	page := utils.ParseIntOption(c.DefaultQuery("page", "1"))
	limit := utils.ParseIntOption(c.Query("limit"))
	if page < 1 {
		page = 1
	}
	if limit > 0 {
		folders = paginate(folders, page, limit)
	} else {
		limit = total
	}

	totalPages := 1
	if limit > 0 {
		totalPages = total / limit
		if total%limit != 0 {
			totalPages++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"folders": folders,
		"pagination": gin.H{
			"current_page": page,
			"total_pages":  totalPages,
			"total_items":  total,
			"per_page":     limit,
		},
	})
}

// paginate returns the 1-based page of size limit. Pages past the end are
// empty.
func paginate(folders []*models.Folder, page, limit int) []*models.Folder {
	if limit > len(folders) {
		limit = len(folders)
	}
	if limit == 0 || page-1 > (len(folders)-1)/limit {
		return []*models.Folder{}
	}
	offset := (page - 1) * limit
	end := offset + limit
	if end > len(folders) {
		end = len(folders)
	}
	return folders[offset:end]
}

// GetFolder handles retrieving a single folder with its children and tasks
func (h *Handler) GetFolder(c *gin.Context) {
	contents, err := h.org.Contents(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contents)
}

// UpdateFolder handles renaming a folder or changing its details
func (h *Handler) UpdateFolder(c *gin.Context) {
	var input models.FolderFields
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.org.EditFolder(c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// MoveFolder handles re-parenting a folder
func (h *Handler) MoveFolder(c *gin.Context) {
	var input struct {
		ParentID string `json:"parent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: parent_id is required"})
		return
	}

	folder, err := h.org.MoveFolder(c.Param("id"), input.ParentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// DeleteFolder handles folder deletion together with its subtree
func (h *Handler) DeleteFolder(c *gin.Context) {
	cascade, err := h.org.DeleteFolder(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Folder deleted successfully",
		"deleted_folders": cascade.FolderIDs,
		"deleted_tasks":   cascade.TaskIDs,
	})
}
