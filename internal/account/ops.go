package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/adminkit/adminkit/internal/dispatch"
	"github.com/adminkit/adminkit/internal/schema"
)

const timeFormat = "2006-01-02T15:04:05Z"

// View is the account record shape returned by operations. It never
// carries the password hash.
type View struct {
	ID        string  `json:"id"`
	Fullname  string  `json:"fullname"`
	Role      string  `json:"role"`
	Username  string  `json:"username"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	LastLogin *string `json:"lastLogin"`
	DeletedAt *string `json:"deletedAt"`
}

func viewOf(a *Account) View {
	v := View{
		ID:        a.ID.String(),
		Fullname:  a.Fullname,
		Role:      a.Role,
		Username:  a.Username,
		Status:    a.Status,
		CreatedAt: a.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: a.UpdatedAt.UTC().Format(timeFormat),
	}
	v.LastLogin = formatTime(a.LastLogin)
	v.DeletedAt = formatTime(a.DeletedAt)
	return v
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeFormat)
	return &s
}

// Ops builds the account manager dispatcher: the full lifecycle
// (create, update, soft delete, recover, hard delete), the read views,
// and the login/logout pair.
func Ops(repo Repository, svc *Service, policy schema.Policy, opts ...dispatch.Option) *dispatch.Dispatcher {
	ops := &operations{repo: repo, svc: svc}

	handlers := map[string]dispatch.Handler{
		"create":                ops.create,
		"update":                ops.update,
		"delete":                ops.softDelete,
		"harddelete":            ops.hardDelete,
		"find":                  ops.find,
		"findall":               ops.findAll,
		"login":                 ops.login,
		"logout":                ops.logout,
		"getdeletedaccount":     ops.getDeleted,
		"getalldeletedaccount":  ops.getAllDeleted,
		"recoverdeletedaccount": ops.recover,
	}

	// logout carries no payload contract; the original dispatcher
	// short-circuits it before validation.
	opts = append(opts, dispatch.WithUnvalidated("logout"))

	return dispatch.New("accounts", Schemas(policy), handlers, opts...)
}

type operations struct {
	repo Repository
	svc  *Service
}

func (o *operations) create(ctx context.Context, payload map[string]any) (any, error) {
	hash, err := o.svc.HashPassword(strField(payload, "password"))
	if err != nil {
		return nil, err
	}

	a := &Account{
		Fullname:     strField(payload, "fullname"),
		Role:         strField(payload, "role"),
		Username:     strField(payload, "username"),
		PasswordHash: hash,
		Status:       strField(payload, "status"),
	}

	if err := o.repo.Create(ctx, a); err != nil {
		return nil, storeError(err)
	}

	return map[string]any{"id": a.ID.String()}, nil
}

func (o *operations) update(ctx context.Context, payload map[string]any) (any, error) {
	id := idField(payload)

	fields := UpdateFields{
		Fullname: optField(payload, "fullname"),
		Role:     optField(payload, "role"),
		Username: optField(payload, "username"),
		Status:   optField(payload, "status"),
	}

	if password := optField(payload, "password"); password != nil {
		hash, err := o.svc.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		fields.PasswordHash = &hash
	}

	if _, err := o.repo.Update(ctx, id, fields); err != nil {
		return nil, storeError(err)
	}

	return map[string]any{"id": id.String()}, nil
}

func (o *operations) softDelete(ctx context.Context, payload map[string]any) (any, error) {
	id := idField(payload)
	if _, err := o.repo.SoftDelete(ctx, id); err != nil {
		return nil, storeError(err)
	}
	return map[string]any{"id": id.String()}, nil
}

func (o *operations) hardDelete(ctx context.Context, payload map[string]any) (any, error) {
	id := idField(payload)
	count, err := o.repo.HardDelete(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return map[string]any{"id": id.String(), "deletedCount": count}, nil
}

func (o *operations) find(ctx context.Context, payload map[string]any) (any, error) {
	a, err := o.repo.GetByID(ctx, idField(payload))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return viewOf(a), nil
}

func (o *operations) findAll(ctx context.Context, _ map[string]any) (any, error) {
	accounts, err := o.repo.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return views(accounts), nil
}

func (o *operations) login(ctx context.Context, payload map[string]any) (any, error) {
	a, err := o.svc.Login(ctx, strField(payload, "username"), strField(payload, "password"))
	if err != nil {
		return nil, storeError(err)
	}
	return viewOf(a), nil
}

func (o *operations) logout(_ context.Context, _ map[string]any) (any, error) {
	// No store work; the HTTP layer clears the session cookie.
	return nil, nil
}

func (o *operations) getDeleted(ctx context.Context, payload map[string]any) (any, error) {
	a, err := o.repo.GetDeleted(ctx, idField(payload))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return viewOf(a), nil
}

func (o *operations) getAllDeleted(ctx context.Context, _ map[string]any) (any, error) {
	accounts, err := o.repo.ListDeleted(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return views(accounts), nil
}

func (o *operations) recover(ctx context.Context, payload map[string]any) (any, error) {
	id := idField(payload)
	count, err := o.repo.Recover(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	// Zero rows means the id was not soft-deleted; callers check the
	// count rather than assume the call implies recovery.
	return map[string]any{"id": id.String(), "recovered": count}, nil
}

func views(accounts []Account) []View {
	out := make([]View, 0, len(accounts))
	for i := range accounts {
		out = append(out, viewOf(&accounts[i]))
	}
	return out
}

// storeError maps store and auth sentinels to their envelope codes;
// everything else passes through for the dispatcher to normalize.
func storeError(err error) error {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return dispatch.NewError(dispatch.CodeDuplicate, "username already exists")
	case errors.Is(err, ErrNotFound):
		return dispatch.NewError(dispatch.CodeNotFound, "account not found")
	case errors.Is(err, ErrInvalidCredentials):
		return dispatch.NewError(dispatch.CodeInvalidCredentials, "wrong password")
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

// idField parses the payload id. The schema has already vetted the
// format, so a zero UUID only appears for unvalidated callers.
func idField(payload map[string]any) uuid.UUID {
	id, _ := uuid.Parse(strField(payload, "id"))
	return id
}
