package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-task-organizer/internal/api/handlers"
	"go-task-organizer/internal/config"
	"go-task-organizer/internal/logging"
	"go-task-organizer/internal/models"
	"go-task-organizer/internal/organizer"
	"go-task-organizer/internal/store"
	"go-task-organizer/internal/utils"
)

type testServer struct {
	router *gin.Engine
	org    *organizer.Organizer
	root   *models.Folder
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open(context.Background(), store.NewMemoryPersister())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	org := organizer.New(s, nil)
	root, err := org.EnsureRoot()
	if err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}

	router := gin.New()
	SetupRoutes(router, handlers.New(org, nil, logging.Discard()), secret)
	return &testServer{router: router, org: org, root: root}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "secret")
	w := ts.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFolderAndTaskFlow(t *testing.T) {
	ts := newTestServer(t, "")

	w := ts.do(t, http.MethodPost, "/api/v1/folders", map[string]any{"name": "School"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create folder status = %d: %s", w.Code, w.Body)
	}
	school := decode[models.Folder](t, w)
	if school.ParentID == nil || *school.ParentID != ts.root.ID {
		t.Fatalf("folder parent = %v, want root", school.ParentID)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/folders/"+school.ID+"/tasks", map[string]any{"name": "Finish homework"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task status = %d: %s", w.Code, w.Body)
	}
	task := decode[models.Task](t, w)
	if task.IsDone || task.Priority != models.PriorityMedium {
		t.Fatalf("task = %+v", task)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID+"/done", map[string]any{"done": true})
	if w.Code != http.StatusOK || !decode[models.Task](t, w).IsDone {
		t.Fatalf("set done status = %d: %s", w.Code, w.Body)
	}

	w = ts.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, map[string]any{"priority": "HIGH", "details": "pages 1-4"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body)
	}
	if got := decode[models.Task](t, w); got.Priority != models.PriorityHigh || got.Details == nil {
		t.Fatalf("updated task = %+v", got)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/folders/"+school.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get folder status = %d", w.Code)
	}
	contents := decode[organizer.FolderContents](t, w)
	if len(contents.Tasks) != 1 || contents.Tasks[0].ID != task.ID {
		t.Fatalf("contents = %+v", contents)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/tree", nil)
	tree := decode[organizer.TreeNode](t, w)
	if len(tree.Children) != 1 || len(tree.Children[0].Tasks) != 1 {
		t.Fatalf("tree = %+v", tree)
	}
	w = ts.do(t, http.MethodGet, "/api/v1/tree?hide_done=true", nil)
	if tree := decode[organizer.TreeNode](t, w); len(tree.Children[0].Tasks) != 0 {
		t.Fatalf("done task not hidden: %+v", tree.Children[0].Tasks)
	}

	w = ts.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID+"/folders/"+school.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove membership status = %d: %s", w.Code, w.Body)
	}
	if deleted := decode[map[string]any](t, w)["task_deleted"]; deleted != true {
		t.Fatalf("task_deleted = %v, want true", deleted)
	}
	if w := ts.do(t, http.MethodGet, "/api/v1/tasks/"+task.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted task status = %d", w.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t, "")
	child, err := ts.org.CreateSubfolder(ts.root.ID, "Child", nil)
	if err != nil {
		t.Fatalf("CreateSubfolder: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank folder name", http.MethodPost, "/api/v1/folders", map[string]any{"name": " "}, http.StatusBadRequest},
		{"unknown parent", http.MethodPost, "/api/v1/folders", map[string]any{"name": "x", "parent_id": "nope"}, http.StatusNotFound},
		{"unknown task", http.MethodGet, "/api/v1/tasks/nope", nil, http.StatusNotFound},
		{"bad priority", http.MethodPost, "/api/v1/folders/" + ts.root.ID + "/tasks", map[string]any{"name": "x", "priority": "urgent"}, http.StatusBadRequest},
		{"delete root", http.MethodDelete, "/api/v1/folders/" + ts.root.ID, nil, http.StatusConflict},
		{"move into self", http.MethodPost, "/api/v1/folders/" + child.ID + "/move", map[string]any{"parent_id": child.ID}, http.StatusConflict},
		{"rename root", http.MethodPut, "/api/v1/folders/" + ts.root.ID, map[string]any{"name": "Top"}, http.StatusConflict},
		{"done missing", http.MethodPut, "/api/v1/tasks/nope/done", map[string]any{}, http.StatusBadRequest},
		{"bad export format", http.MethodGet, "/api/v1/export/xml", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestListFoldersPagination(t *testing.T) {
	ts := newTestServer(t, "")
	for _, name := range []string{"c", "a", "b"} {
		if _, err := ts.org.CreateSubfolder(ts.root.ID, name, nil); err != nil {
			t.Fatalf("CreateSubfolder: %v", err)
		}
	}

	w := ts.do(t, http.MethodGet, "/api/v1/folders?parent_id="+ts.root.ID+"&limit=2&page=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[struct {
		Folders    []models.Folder `json:"folders"`
		Pagination struct {
			TotalItems int `json:"total_items"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}](t, w)
	if resp.Pagination.TotalItems != 3 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("pagination = %+v", resp.Pagination)
	}
	if len(resp.Folders) != 1 || resp.Folders[0].Name != "c" {
		t.Fatalf("page 2 = %+v", resp.Folders)
	}
}

func TestListFoldersOutOfRangePages(t *testing.T) {
	ts := newTestServer(t, "")
	for _, name := range []string{"a", "b", "c"} {
		if _, err := ts.org.CreateSubfolder(ts.root.ID, name, nil); err != nil {
			t.Fatalf("CreateSubfolder: %v", err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"page=2&limit=9223372036854775807", 0},
		{"page=9223372036854775807&limit=2", 0},
		{"page=9223372036854775807&limit=9223372036854775807", 0},
		{"page=1&limit=9223372036854775807", 4},
		{"page=3&limit=2", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, "/api/v1/folders?"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body)
			}
			resp := decode[struct {
				Folders    []models.Folder `json:"folders"`
				Pagination struct {
					TotalItems int `json:"total_items"`
				} `json:"pagination"`
			}](t, w)
			if len(resp.Folders) != tt.want || resp.Pagination.TotalItems != 4 {
				t.Fatalf("got %d folders of %d, want %d", len(resp.Folders), resp.Pagination.TotalItems, tt.want)
			}
		})
	}
}

func TestBatchOperation(t *testing.T) {
	ts := newTestServer(t, "")
	a, _ := ts.org.CreateTaskIn(ts.root.ID, models.TaskDraft{Name: "A"})
	b, _ := ts.org.CreateTaskIn(ts.root.ID, models.TaskDraft{Name: "B"})

	w := ts.do(t, http.MethodPost, "/api/v1/tasks/batch", map[string]any{
		"operation": "done",
		"task_ids":  []string{a.ID, "missing", b.ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	resp := decode[struct {
		Affected []string                `json:"affected_ids"`
		Results  []handlers.BatchResult `json:"results"`
	}](t, w)
	if len(resp.Affected) != 2 || resp.Results[1].Success || resp.Results[1].Error == "" {
		t.Fatalf("batch response = %+v", resp)
	}
	for _, id := range []string{a.ID, b.ID} {
		task, _ := ts.org.Task(id)
		if !task.IsDone {
			t.Fatalf("task %s not done", task.Name)
		}
	}

	w = ts.do(t, http.MethodPost, "/api/v1/tasks/batch", map[string]any{"operation": "add_folder", "task_ids": []string{a.ID}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing folder_id status = %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/v1/tasks/batch", map[string]any{"operation": "archive", "task_ids": []string{a.ID}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad operation status = %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/v1/tasks/batch", map[string]any{
		"operation": "remove_folder",
		"task_ids":  []string{a.ID, b.ID},
		"folder_id": ts.root.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("remove_folder status = %d", w.Code)
	}
	if n := len(ts.org.Snapshot().Tasks); n != 0 {
		t.Fatalf("%d tasks survived losing their only folder", n)
	}
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t, "")
	if _, err := ts.org.CreateTaskIn(ts.root.ID, models.TaskDraft{Name: "Buy groceries"}); err != nil {
		t.Fatalf("CreateTaskIn: %v", err)
	}

	w := ts.do(t, http.MethodGet, "/api/v1/export/csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".csv") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "Buy groceries") {
		t.Fatalf("body = %s", w.Body)
	}
}

func TestSave(t *testing.T) {
	ts := newTestServer(t, "")
	w := ts.do(t, http.MethodPost, "/api/v1/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if ts.org.Store().Dirty() {
		t.Fatal("store still dirty after save")
	}
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	ts := newTestServer(t, secret)

	if w := ts.do(t, http.MethodGet, "/api/v1/tree", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/v1/tree", nil, "Authorization", "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", w.Code)
	}

	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret, Expiration: "1h"}}
	token, err := utils.GenerateToken(cfg, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := ts.do(t, http.MethodGet, "/api/v1/tree", nil, "Authorization", "Bearer "+token); w.Code != http.StatusOK {
		t.Fatalf("valid token status = %d: %s", w.Code, w.Body)
	}
}
