package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/adminkit/adminkit/internal/dispatch"
	"github.com/adminkit/adminkit/internal/schema"
)

const timeFormat = "2006-01-02T15:04:05Z"

// View is the entry record shape returned by operations.
type View struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Value       Value   `json:"value"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func viewOf(e *Entry) View {
	return View{
		ID:          e.ID.String(),
		Category:    e.Category,
		Value:       e.Value,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   e.UpdatedAt.UTC().Format(timeFormat),
	}
}

// Ops builds a catalog manager dispatcher. name labels the dispatcher
// (and its metrics); label is the human-facing kind used in error
// messages, e.g. "data reference" or "enum".
func Ops(repo Repository, name, label string, policy schema.Policy, opts ...dispatch.Option) *dispatch.Dispatcher {
	ops := &operations{repo: repo, label: label}

	handlers := map[string]dispatch.Handler{
		"create":    ops.create,
		"update":    ops.update,
		"delete":    ops.delete,
		"get":       ops.get,
		"getall":    ops.getAll,
		"getbylist": ops.getByList,
	}

	return dispatch.New(name, Schemas(policy), handlers, opts...)
}

type operations struct {
	repo  Repository
	label string
}

func (o *operations) create(ctx context.Context, payload map[string]any) (any, error) {
	e := &Entry{
		Category:    strField(payload, "category"),
		Value:       valueField(payload),
		Description: optField(payload, "description"),
	}

	if err := o.repo.Create(ctx, e); err != nil {
		return nil, o.storeError(err)
	}

	return viewOf(e), nil
}

// update replaces the entry's content with the payload, keeping any
// field the payload omits.
func (o *operations) update(ctx context.Context, payload map[string]any) (any, error) {
	id := idField(payload)

	e, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return nil, o.storeError(err)
	}

	if _, ok := payload["category"]; ok {
		e.Category = strField(payload, "category")
	}
	if _, ok := payload["value"]; ok {
		e.Value = valueField(payload)
	}
	if _, ok := payload["description"]; ok {
		e.Description = optField(payload, "description")
	}

	if err := o.repo.Update(ctx, e); err != nil {
		return nil, o.storeError(err)
	}

	return viewOf(e), nil
}

func (o *operations) delete(ctx context.Context, payload map[string]any) (any, error) {
	id := idField(payload)
	if err := o.repo.Delete(ctx, id); err != nil {
		return nil, o.storeError(err)
	}
	return map[string]any{"id": id.String()}, nil
}

func (o *operations) get(ctx context.Context, payload map[string]any) (any, error) {
	e, err := o.repo.GetByID(ctx, idField(payload))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, o.storeError(err)
	}
	return viewOf(e), nil
}

func (o *operations) getAll(ctx context.Context, payload map[string]any) (any, error) {
	entries, err := o.repo.List(ctx, optField(payload, "category"))
	if err != nil {
		return nil, o.storeError(err)
	}

	out := make([]View, 0, len(entries))
	for i := range entries {
		out = append(out, viewOf(&entries[i]))
	}
	return out, nil
}

func (o *operations) getByList(ctx context.Context, payload map[string]any) (any, error) {
	ids := make(map[string]uuid.UUID, len(payload))
	for key, raw := range payload {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids[key] = id
	}

	entries, err := o.repo.GetByList(ctx, ids)
	if err != nil {
		return nil, o.storeError(err)
	}

	out := make(map[string]any, len(entries))
	for key, e := range entries {
		if e == nil {
			out[key] = nil
			continue
		}
		out[key] = viewOf(e)
	}
	return out, nil
}

func (o *operations) storeError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateValue):
		return dispatch.NewError(dispatch.CodeDuplicate, o.label+" value already exists")
	case errors.Is(err, ErrNotFound):
		return dispatch.NewError(dispatch.CodeNotFound, o.label+" not found")
	default:
		return err
	}
}

func strField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func optField(payload map[string]any, key string) *string {
	if s, ok := payload[key].(string); ok {
		return &s
	}
	return nil
}

func idField(payload map[string]any) uuid.UUID {
	id, _ := uuid.Parse(strField(payload, "id"))
	return id
}

func valueField(payload map[string]any) Value {
	obj, ok := payload["value"].(map[string]any)
	if !ok {
		return Value{}
	}
	v := Value{Value: obj["value"]}
	if title, ok := obj["title"].(string); ok {
		v.Title = title
	}
	return v
}
