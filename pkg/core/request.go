package core

import "net/url"

// Request is the transport-agnostic description of one API call.
// Path is the bare signed path; Query is kept separate because query-string
// construction must happen strictly after header construction.
type Request struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   url.Values        `json:"query,omitempty"`
	Body    []byte            `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// NewRequest creates a Request for the given method and bare path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   make(url.Values),
		Headers: make(map[string]string),
	}
}

// SetQuery sets a single query parameter, replacing prior values.
func (r *Request) SetQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Set(key, value)
	return r
}

// AddQuery appends a query parameter value. Used for keys the API expects
// repeated (e.g. one marketId per requested market).
func (r *Request) AddQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Add(key, value)
	return r
}

// SetQueryValues merges the given values into the request query.
func (r *Request) SetQueryValues(values url.Values) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	for k, vals := range values {
		for _, v := range vals {
			r.Query.Add(k, v)
		}
	}
	return r
}

// SetBody attaches the serialized body bytes. The same bytes must already
// have been signed.
func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// SetHeader sets a request header.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}
