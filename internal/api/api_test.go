package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeeping/internal/core"
	"bookkeeping/internal/gateway"
)

type fakeGateway struct {
	last gateway.Request
	env  core.Envelope
}

func (f *fakeGateway) Execute(_ context.Context, req gateway.Request) (*core.Envelope, error) {
	f.last = req
	env := f.env
	return &env, nil
}

func TestWrappersFixMethodAndPath(t *testing.T) {
	payload := map[string]any{"id": 3}
	cases := []struct {
		name   string
		call   func(*Client, context.Context) (*core.Envelope, error)
		method string
		path   string
	}{
		{"Login", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.Login(ctx, payload) }, http.MethodPost, "/app/login"},
		{"Register", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.Register(ctx, payload) }, http.MethodPost, "/app/register"},
		{"UpdateProfile", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.UpdateProfile(ctx, payload) }, http.MethodPost, "/app/user/update"},
		{"ListBillRecords", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.ListBillRecords(ctx, payload) }, http.MethodGet, "/billRecord/list"},
		{"SaveBillRecord", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.SaveBillRecord(ctx, payload) }, http.MethodPost, "/billRecord/save"},
		{"DeleteBillRecord", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.DeleteBillRecord(ctx, payload) }, http.MethodGet, "/billRecord/delete"},
		{"BillRecordDetail", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.BillRecordDetail(ctx, payload) }, http.MethodGet, "/billRecord/detail"},
		{"EditBillRecord", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.EditBillRecord(ctx, payload) }, http.MethodPost, "/billRecord/edit"},
		{"CurrentYearRecord", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.CurrentYearRecord(ctx, payload) }, http.MethodGet, "/statistics/currentYearRecord"},
		{"ListBillTypes", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.ListBillTypes(ctx, payload) }, http.MethodGet, "/billType/list"},
		{"SaveBillType", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.SaveBillType(ctx, payload) }, http.MethodPost, "/billType/save"},
		{"EditBillType", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.EditBillType(ctx, payload) }, http.MethodPost, "/billType/edit"},
		{"DeleteBillType", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.DeleteBillType(ctx, payload) }, http.MethodGet, "/billType/delete"},
		{"DragSortBillTypes", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.DragSortBillTypes(ctx, payload) }, http.MethodPost, "/billType/dragSort"},
		{"BillTypeByID", func(c *Client, ctx context.Context) (*core.Envelope, error) { return c.BillTypeByID(ctx, payload) }, http.MethodGet, "/billType/queryById"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{}
			_, err := tc.call(New(gw), context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.method, gw.last.Method)
			assert.Equal(t, tc.path, gw.last.Path)
			assert.Equal(t, payload, gw.last.Data, "payload is forwarded untouched")
		})
	}
}

func TestTotalExpenseMonthly(t *testing.T) {
	gw := &fakeGateway{}
	_, err := New(gw).TotalExpenseMonthly(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gw.last.Method)
	assert.Equal(t, PathTotalExpenseMonthly, gw.last.Path)
	assert.Equal(t, map[string]string{"month": "2024-03"}, gw.last.Data)
}

func TestDecode(t *testing.T) {
	env := &core.Envelope{Data: []byte(`[{"ID":1,"name":"food","icon":"rice"}]`)}
	types, err := Decode[[]core.BillType](env)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "food", types[0].Name)

	empty, err := Decode[[]core.BillType](&core.Envelope{})
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = Decode[core.LoginResult](nil)
	assert.ErrorIs(t, err, ErrNoEnvelope)

	_, err = Decode[core.LoginResult](&core.Envelope{Data: []byte(`"nope"`)})
	assert.Error(t, err)
}
