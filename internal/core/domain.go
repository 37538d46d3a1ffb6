package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

type (
	// BillType is a bill category as the backend reports it on bill records.
	BillType struct {
		ID   int64  `json:"ID"`
		Name string `json:"name"`
		Icon string `json:"icon"`
	}

	BillItem struct {
		ID              int64    `json:"ID"`
		Price           Amount   `json:"price"`
		ConsumptionTime string   `json:"consumptionTime"`
		Remark          string   `json:"remark,omitempty"`
		Type            string   `json:"type"`
		IconBg          string   `json:"iconBg"`
		BillType        BillType `json:"BillType"`
	}

	// BillGroup is one day's worth of bill records with its total.
	BillGroup struct {
		ConsumptionDate string     `json:"consumptionDate"`
		Total           Amount     `json:"total"`
		Data            []BillItem `json:"Data"`
	}

	PageParams struct {
		PageNo   int `json:"pageNo"`
		PageSize int `json:"pageSize"`
	}

	// Category is a top-level bill category in the category management screens.
	Category struct {
		ID         int64         `json:"id"`
		Name       string        `json:"name"`
		Icon       string        `json:"icon"`
		BgColor    string        `json:"bgColor,omitempty"`
		Expanded   bool          `json:"expanded,omitempty"`
		QuickNotes int           `json:"quickNotes,omitempty"`
		Children   []Subcategory `json:"children"`
		Note       string        `json:"note,omitempty"`
		Sort       int           `json:"sort,omitempty"`
	}

	Subcategory struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Icon     string `json:"icon"`
		BgColor  string `json:"bgColor,omitempty"`
		ParentID int64  `json:"parentId,omitempty"`
		Sort     int    `json:"sort,omitempty"`
	}

	SubcategoryForm struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}

	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// LoginResult is the data payload of a successful login.
	LoginResult struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user,omitempty"`
	}

	UploadedFile struct {
		FileID string `json:"fileId"`
		URL    string `json:"url,omitempty"`
		Name   string `json:"name,omitempty"`
	}
)

var (
	ErrEmptyUsername = errors.New("empty username")
	ErrEmptyPassword = errors.New("empty password")
	ErrInvalidAmount = errors.New("invalid amount")
)

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrEmptyUsername
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Amount keeps a monetary value exactly as the backend sent it. The backend
// emits prices both as JSON numbers and as JSON strings.
type Amount string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return ErrInvalidAmount
		}
		*a = Amount(n.String())
		return nil
	}
}

// MarshalJSON writes the amount back as a JSON number when it is numeric.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	if c := a[0]; (c == '-' || (c >= '0' && c <= '9')) && json.Valid([]byte(a)) {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

func (a Amount) String() string {
	return string(a)
}

// IsZero reports whether the amount is absent.
func (a Amount) IsZero() bool {
	return a == ""
}
