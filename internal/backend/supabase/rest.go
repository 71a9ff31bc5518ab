package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bilgisen/pressdesk/internal/backend"
)

type restAPI struct{ c *Client }

func (r *restAPI) Select(ctx context.Context, table string, order backend.Order, dest any) error {
	req := r.c.request(ctx).
		SetPathParam("table", table).
		SetQueryParam("select", "*").
		SetResult(dest)
	if order.Field != "" {
		req.SetQueryParam("order", orderParam(order))
	}
	resp, err := req.Get("/rest/v1/{table}")
	return checkResponse(resp, err)
}

func (r *restAPI) SelectByID(ctx context.Context, table, idField, id string, dest any) error {
	var rows []json.RawMessage
	resp, err := r.c.request(ctx).
		SetPathParam("table", table).
		SetQueryParam("select", "*").
		SetQueryParam(idField, "eq."+id).
		SetQueryParam("limit", "1").
		SetResult(&rows).
		Get("/rest/v1/{table}")
	if err := checkResponse(resp, err); err != nil {
		return err
	}
	if len(rows) == 0 {
		return backend.ErrNotFound
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("decode %s row: %w", table, err)
	}
	return nil
}

func (r *restAPI) Insert(ctx context.Context, table string, row any) error {
	resp, err := r.c.request(ctx).
		SetPathParam("table", table).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/rest/v1/{table}")
	return checkResponse(resp, err)
}

func (r *restAPI) Update(ctx context.Context, table, idField, id string, row any) error {
	resp, err := r.c.request(ctx).
		SetPathParam("table", table).
		SetQueryParam(idField, "eq."+id).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Patch("/rest/v1/{table}")
	return checkResponse(resp, err)
}

func (r *restAPI) Delete(ctx context.Context, table, idField, id string) error {
	resp, err := r.c.request(ctx).
		SetPathParam("table", table).
		SetQueryParam(idField, "eq."+id).
		Delete("/rest/v1/{table}")
	return checkResponse(resp, err)
}

func orderParam(o backend.Order) string {
	dir := "desc"
	if o.Ascending {
		dir = "asc"
	}
	return o.Field + "." + dir
}
