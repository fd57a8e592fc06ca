package lightspeed

import (
	"context"
	"fmt"
	"strconv"
)

const (
	// pageSize is the fixed page size of the listing endpoints.
	pageSize = 100

	// maxPages bounds a single fetch in case a malformed response never
	// signals termination.
	maxPages = 1000
)

// Pages is a pull-based iterator over a paginated listing. Each page is
// fetched only when Next is called, so a consumer that stops pulling stops
// pagination with no further requests issued. A Pages is finite and not
// restartable; a fresh fetch always starts from offset 0.
//
// Usage follows the bufio.Scanner shape:
//
//	pages := client.EmployeeHours(ctx, creds, params)
//	for pages.Next() {
//	    page := pages.Page()
//	    ...
//	}
//	if err := pages.Err(); err != nil { ... }
type Pages struct {
	ctx      context.Context
	client   *client
	creds    Credentials
	params   Params
	resource string

	offset  int
	fetched int
	done    bool
	page    *Page
	err     error
}

// Next fetches the next page, reporting whether one is available. It returns
// false once the listing is exhausted or a fetch failed.
func (p *Pages) Next() bool {
	if p.done || p.err != nil {
		return false
	}

	if p.fetched >= maxPages {
		p.err = fmt.Errorf("%s fetch exceeded %d pages without terminating", p.resource, maxPages)
		return false
	}

	values := p.params.Encode()
	values.Set("offset", strconv.Itoa(p.offset))

	page, err := p.client.callWithRefresh(p.ctx, p.path(), p.creds, values, p.resource)
	if err != nil {
		p.err = err
		return false
	}
	p.page = page
	p.fetched++

	// No offset key means the endpoint is not paginated: emit this page and
	// stop. Otherwise keep going while records remain beyond this page.
	attrs := page.Attributes
	if !attrs.Paged || attrs.Count-attrs.Offset <= attrs.Limit {
		p.done = true
	} else {
		p.offset += pageSize
	}
	return true
}

// Page returns the page fetched by the last successful Next.
func (p *Pages) Page() *Page {
	return p.page
}

// Err returns the error that ended iteration, if any.
func (p *Pages) Err() error {
	return p.err
}

func (p *Pages) path() string {
	return "/API/Account/" + p.creds.AccountID() + "/" + p.resource + ".json"
}
