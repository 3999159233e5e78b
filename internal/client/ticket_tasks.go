package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

func (c *TicketsClient) tasksPath(ticketID int, suffix string) (string, error) {
	return c.path("/" + itoa(ticketID) + "/tasks" + suffix)
}

// ListTasks implements tdx.TicketsClient.ListTasks.
func (c *TicketsClient) ListTasks(ctx context.Context, ticketID int) ([]tdx.TicketTask, error) {
	path, err := c.tasksPath(ticketID, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing ticket tasks: %w", err)
	}

	return decodeList[tdx.TicketTask](resp, "ticket tasks")
}

// GetTask implements tdx.TicketsClient.GetTask.
func (c *TicketsClient) GetTask(ctx context.Context, ticketID, taskID int) (*tdx.TicketTask, error) {
	path, err := c.tasksPath(ticketID, "/"+itoa(taskID))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting ticket task: %w", err)
	}

	return decodeTask(resp.Decode)
}

// CreateTask implements tdx.TicketsClient.CreateTask.
func (c *TicketsClient) CreateTask(ctx context.Context, ticketID int, task *tdx.TicketTask) (*tdx.TicketTask, error) {
	path, err := c.tasksPath(ticketID, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, path, task)
	if err != nil {
		return nil, fmt.Errorf("creating ticket task: %w", err)
	}

	return decodeTask(resp.Decode)
}

// EditTask implements tdx.TicketsClient.EditTask.
func (c *TicketsClient) EditTask(ctx context.Context, ticketID int, task *tdx.TicketTask) (*tdx.TicketTask, error) {
	if task == nil || task.ID == 0 {
		return nil, fmt.Errorf("ticket task: %w", constants.ErrMissingID)
	}

	path, err := c.tasksPath(ticketID, "/"+itoa(task.ID))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Put(ctx, path, task)
	if err != nil {
		return nil, fmt.Errorf("editing ticket task: %w", err)
	}

	return decodeTask(resp.Decode)
}

// DeleteTask implements tdx.TicketsClient.DeleteTask.
func (c *TicketsClient) DeleteTask(ctx context.Context, ticketID, taskID int) error {
	path, err := c.tasksPath(ticketID, "/"+itoa(taskID))
	if err != nil {
		return err
	}

	if _, err := c.httpClient.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting ticket task: %w", err)
	}

	return nil
}

func decodeTask(decode func(v interface{}) error) (*tdx.TicketTask, error) {
	var task tdx.TicketTask

	if err := decode(&task); err != nil {
		return nil, fmt.Errorf("parsing ticket task: %w", err)
	}

	return &task, nil
}
