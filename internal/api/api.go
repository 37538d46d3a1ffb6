// Package api names every backend endpoint the client calls. Each wrapper
// fixes the method and path and hands its payload to the gateway untouched.
package api

import (
	"context"
	"errors"
	"net/http"

	"bookkeeping/internal/core"
	"bookkeeping/internal/gateway"
)

// Endpoint paths, relative to the configured origin.
const (
	PathLogin         = "/app/login"
	PathRegister      = "/app/register"
	PathUpdateProfile = "/app/user/update"

	PathBillRecordList   = "/billRecord/list"
	PathBillRecordSave   = "/billRecord/save"
	PathBillRecordDelete = "/billRecord/delete"
	PathBillRecordDetail = "/billRecord/detail"
	PathBillRecordEdit   = "/billRecord/edit"

	PathTotalExpenseMonthly = "/statistics/totalExpenseMonthly"
	PathCurrentYearRecord   = "/statistics/currentYearRecord"

	PathBillTypeList     = "/billType/list"
	PathBillTypeSave     = "/billType/save"
	PathBillTypeEdit     = "/billType/edit"
	PathBillTypeDelete   = "/billType/delete"
	PathBillTypeDragSort = "/billType/dragSort"
	PathBillTypeByID     = "/billType/queryById"
)

// Executor is what the wrappers need from the gateway.
type Executor interface {
	Execute(ctx context.Context, req gateway.Request) (*core.Envelope, error)
}

type Client struct {
	gw Executor
}

func New(gw Executor) *Client {
	return &Client{gw: gw}
}

func (c *Client) get(ctx context.Context, path string, data any) (*core.Envelope, error) {
	return c.gw.Execute(ctx, gateway.Request{Method: http.MethodGet, Path: path, Data: data})
}

func (c *Client) post(ctx context.Context, path string, data any) (*core.Envelope, error) {
	return c.gw.Execute(ctx, gateway.Request{Method: http.MethodPost, Path: path, Data: data})
}

func (c *Client) Login(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathLogin, data)
}

func (c *Client) Register(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathRegister, data)
}

func (c *Client) UpdateProfile(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathUpdateProfile, data)
}

// ListBillRecords pages through bill records grouped by day.
func (c *Client) ListBillRecords(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathBillRecordList, data)
}

func (c *Client) SaveBillRecord(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathBillRecordSave, data)
}

func (c *Client) DeleteBillRecord(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathBillRecordDelete, data)
}

func (c *Client) BillRecordDetail(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathBillRecordDetail, data)
}

func (c *Client) EditBillRecord(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathBillRecordEdit, data)
}

// TotalExpenseMonthly sends {"month": month}, month formatted as YYYY-MM.
func (c *Client) TotalExpenseMonthly(ctx context.Context, month string) (*core.Envelope, error) {
	return c.get(ctx, PathTotalExpenseMonthly, map[string]string{"month": month})
}

func (c *Client) CurrentYearRecord(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathCurrentYearRecord, data)
}

func (c *Client) ListBillTypes(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathBillTypeList, data)
}

func (c *Client) SaveBillType(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathBillTypeSave, data)
}

func (c *Client) EditBillType(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathBillTypeEdit, data)
}

func (c *Client) DeleteBillType(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathBillTypeDelete, data)
}

func (c *Client) DragSortBillTypes(ctx context.Context, data any) (*core.Envelope, error) {
	return c.post(ctx, PathBillTypeDragSort, data)
}

func (c *Client) BillTypeByID(ctx context.Context, data any) (*core.Envelope, error) {
	return c.get(ctx, PathBillTypeByID, data)
}

var ErrNoEnvelope = errors.New("no envelope")

// Decode unmarshals the envelope payload into a T.
func Decode[T any](env *core.Envelope) (T, error) {
	var v T
	if env == nil {
		return v, ErrNoEnvelope
	}
	err := env.Decode(&v)
	return v, err
}
