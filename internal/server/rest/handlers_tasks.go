package rest

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
)

type taskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      *model.TaskStatus `json:"status"`
}

func (r taskRequest) input() model.TaskInput {
	return model.TaskInput{Title: r.Title, Description: r.Description, Status: r.Status}
}

type taskResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      model.TaskStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func newTaskListResponse(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, newTaskResponse(&tasks[i]))
	}
	return out
}

func taskID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("id", "must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleCreateTask(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	var body taskRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	t, err := s.tasks.Create(c.UserContext(), u.ID, body.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newTaskResponse(t))
}

func (s *Server) handleListTasks(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	tasks, err := s.tasks.List(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(newTaskListResponse(tasks))
}

func (s *Server) handleListTasksByStatus(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	status := model.TaskStatus(c.Params("status"))
	tasks, err := s.tasks.ListByStatus(c.UserContext(), u.ID, status)
	if err != nil {
		return err
	}
	return c.JSON(newTaskListResponse(tasks))
}

func (s *Server) handleSearchTasks(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	tasks, err := s.tasks.SearchByTitle(c.UserContext(), u.ID, c.Query("title"))
	if err != nil {
		return err
	}
	return c.JSON(newTaskListResponse(tasks))
}

func (s *Server) handleGetTask(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	t, err := s.tasks.Get(c.UserContext(), u.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(newTaskResponse(t))
}

func (s *Server) handleUpdateTask(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var body taskRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	t, err := s.tasks.Update(c.UserContext(), u.ID, id, body.input())
	if err != nil {
		return err
	}
	return c.JSON(newTaskResponse(t))
}

func (s *Server) handleDeleteTask(c *fiber.Ctx) error {
	u, err := actingUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(c.UserContext(), u.ID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
