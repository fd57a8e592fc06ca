package lightspeed

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Credentials is the minimal account state the client needs to issue calls.
// Implementations own durable persistence of a refreshed access token.
type Credentials interface {
	AccountID() string
	AccessToken() string
	RefreshToken() string
	// SetAccessToken replaces the access token after a refresh. The old token
	// is gone for good once this returns.
	SetAccessToken(token string)
	// Save durably persists the holder's current tokens. It is called before
	// any request that depends on a freshly refreshed token.
	Save() error
}

// Attributes is the pagination metadata block every listing response carries.
type Attributes struct {
	Count  int
	Offset int
	Limit  int
	// Paged is false when the response carried no offset key, i.e. the
	// endpoint is not paginated.
	Paged bool
}

// Page is one decoded response unit of a listing endpoint.
type Page struct {
	Attributes Attributes

	records json.RawMessage
}

// Records decodes the page's result array into out, a pointer to a slice.
// The API collapses a single result to a bare object; that case is
// normalized back to a one-element array before decoding.
func (p *Page) Records(out interface{}) error {
	raw := bytes.TrimSpace(p.records)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '{' {
		wrapped := make([]byte, 0, len(raw)+2)
		wrapped = append(wrapped, '[')
		wrapped = append(wrapped, raw...)
		wrapped = append(wrapped, ']')
		raw = wrapped
	}
	return json.Unmarshal(raw, out)
}

func decodePage(body []byte, resource string) (*Page, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	page := &Page{records: envelope[resource]}

	if rawAttrs, ok := envelope["@attributes"]; ok {
		var attrs map[string]interface{}
		if err := json.Unmarshal(rawAttrs, &attrs); err != nil {
			return nil, err
		}
		page.Attributes.Count = intAttribute(attrs, "count")
		page.Attributes.Limit = intAttribute(attrs, "limit")
		if _, ok := attrs["offset"]; ok {
			page.Attributes.Paged = true
			page.Attributes.Offset = intAttribute(attrs, "offset")
		}
	}
	return page, nil
}

// intAttribute reads a numeric attribute which the API serializes sometimes
// as a JSON string and sometimes as a number.
func intAttribute(attrs map[string]interface{}, key string) int {
	switch v := attrs[key].(type) {
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	case float64:
		return int(v)
	default:
		return 0
	}
}

// AccountInfo is the basic account record returned right after authorization.
type AccountInfo struct {
	AccountID string `json:"accountID"`
	Name      string `json:"name"`
}

// Employee is one employee record from the Employee resource.
type Employee struct {
	EmployeeID string `json:"employeeID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Archived   string `json:"archived"`
	// Contact is only populated with load_relations and is an empty string
	// instead of an object when the employee has no contact card.
	Contact json.RawMessage `json:"Contact"`
}

// FullName joins first and last name the way the POS displays them.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Email digs the primary address out of the nested contact structure.
// A missing or non-object Contact block yields an empty string, never an error.
func (e Employee) Email() string {
	var contact struct {
		Emails struct {
			ContactEmail struct {
				Address string `json:"address"`
			} `json:"ContactEmail"`
		} `json:"Emails"`
	}
	if len(e.Contact) == 0 {
		return ""
	}
	if err := json.Unmarshal(e.Contact, &contact); err != nil {
		return ""
	}
	return contact.Emails.ContactEmail.Address
}

// Shop is one location record from the Shop resource.
type Shop struct {
	ShopID string `json:"shopID"`
	Name   string `json:"name"`
}

// EmployeeHours is one raw punch-clock record. CheckOut is empty while the
// shift is still open.
type EmployeeHours struct {
	EmployeeHoursID string `json:"employeeHoursID"`
	EmployeeID      string `json:"employeeID"`
	ShopID          string `json:"shopID"`
	CheckIn         string `json:"checkIn"`
	CheckOut        string `json:"checkOut"`
}
