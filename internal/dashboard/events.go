package dashboard

import "github.com/geocoder89/userdash/internal/domain/user"

// Event is anything Reduce can apply: a user gesture or a store outcome.
type Event interface {
	Name() string
}

// user gestures

type Mounted struct{}

type FieldChanged struct {
	Field string
	Value string
}

// DraftReplaced sets all four fields at once, as an HTML form post does.
type DraftReplaced struct {
	Fields user.Fields
}

// Submitted carries the temp id minted for a create; edit mode ignores it.
type Submitted struct {
	TempID user.ID
}

type EditBegan struct {
	Record user.Record
}

type DeleteRequested struct {
	ID user.ID
}

type NextPageRequested struct{}

type PrevPageRequested struct{}

// store outcomes

type PageLoaded struct {
	Gen     uint64
	Records []user.Record
}

type PageFailed struct {
	Gen uint64
	Err error
}

type CreateSucceeded struct {
	Pending user.PendingRecord
	Record  user.Record
}

type CreateFailed struct {
	Pending user.PendingRecord
	Err     error
}

type UpdateSucceeded struct {
	ID     user.ID
	Record user.Record
}

type UpdateFailed struct {
	ID  user.ID
	Err error
}

type DeleteSucceeded struct {
	ID user.ID
}

type DeleteFailed struct {
	ID  user.ID
	Err error
}

func (Mounted) Name() string           { return "mounted" }
func (FieldChanged) Name() string      { return "field_changed" }
func (DraftReplaced) Name() string     { return "draft_replaced" }
func (Submitted) Name() string         { return "submitted" }
func (EditBegan) Name() string         { return "edit_began" }
func (DeleteRequested) Name() string   { return "delete_requested" }
func (NextPageRequested) Name() string { return "next_page" }
func (PrevPageRequested) Name() string { return "prev_page" }
func (PageLoaded) Name() string        { return "page_loaded" }
func (PageFailed) Name() string        { return "page_failed" }
func (CreateSucceeded) Name() string   { return "create_succeeded" }
func (CreateFailed) Name() string      { return "create_failed" }
func (UpdateSucceeded) Name() string   { return "update_succeeded" }
func (UpdateFailed) Name() string      { return "update_failed" }
func (DeleteSucceeded) Name() string   { return "delete_succeeded" }
func (DeleteFailed) Name() string      { return "delete_failed" }

// Effect is the single store call a transition asks for. A nil Effect means none.
type Effect interface {
	effect()
}

type FetchPage struct {
	Page int
	Size int
	Gen  uint64
}

type CreateRecord struct {
	Pending user.PendingRecord
}

type UpdateRecord struct {
	ID     user.ID
	Fields user.Fields
}

type DeleteRecord struct {
	ID user.ID
}

func (FetchPage) effect()    {}
func (CreateRecord) effect() {}
func (UpdateRecord) effect() {}
func (DeleteRecord) effect() {}
