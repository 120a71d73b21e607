package handler

import (
	"github.com/campuskit/campuskit/internal/apierror"
)

// Meta carries pagination metadata on list responses.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// Response is the uniform result of a handler. Exactly one of Data/Err is
// present; Status and Headers are transport-level and never serialized into
// the body.
type Response struct {
	Status  int                    `json:"-"`
	Headers map[string]string      `json:"-"`
	Data    any                    `json:"data,omitempty"`
	Meta    *Meta                  `json:"meta,omitempty"`
	Err     *apierror.EnvelopeBody `json:"error,omitempty"`
}

// OK wraps data in a 200 response.
func OK(data any) *Response {
	return &Response{Status: 200, Data: data}
}

// Created wraps data in a 201 response.
func Created(data any) *Response {
	return &Response{Status: 201, Data: data}
}

// NoContent is a 204 response with a null data field.
func NoContent() *Response {
	return &Response{Status: 204}
}

// Paged wraps a list in a 200 response with pagination metadata. TotalPages
// is derived from totalCount and pageSize.
func Paged(data any, page, pageSize, totalCount int) *Response {
	pages := 0
	if pageSize > 0 {
		pages = (totalCount + pageSize - 1) / pageSize
	}
	return &Response{
		Status: 200,
		Data:   data,
		Meta:   &Meta{Page: page, PageSize: pageSize, TotalCount: totalCount, TotalPages: pages},
	}
}

// successResponse turns a business-function return value into a response.
// Returning a *Response lets handlers override the default 200.
func successResponse(out any) Response {
	if r, ok := out.(*Response); ok && r != nil {
		if r.Status == 0 {
			r.Status = 200
		}
		return *r
	}
	return Response{Status: 200, Data: out}
}

// errorResponse converts a pipeline or business error into the error
// envelope. Anything that is not an *apierror.Error is wrapped exactly once
// as an internal error; the cause never reaches the client.
func errorResponse(err error) Response {
	e, ok := apierror.IsError(err)
	if !ok {
		e = apierror.Internal("", err)
	}
	body := e.ToEnvelope().Error
	return Response{Status: e.Status(), Err: &body}
}

// withHeaders merges headers onto resp without clobbering existing entries.
func withHeaders(resp Response, headers map[string]string) Response {
	if len(headers) == 0 {
		return resp
	}
	if resp.Headers == nil {
		resp.Headers = make(map[string]string, len(headers))
	}
	for k, v := range headers {
		if _, exists := resp.Headers[k]; !exists {
			resp.Headers[k] = v
		}
	}
	return resp
}
