package protocol

import (
	"fmt"
	"strings"
)

type ResponseError struct {
	Message   string
	Available any
}

// Response is the frontend's reply to a correlated command.
type Response struct {
	MsgID   string
	Values  any
	Error   *ResponseError
	Extras  map[string]any
	Success bool
	Content map[string]any
}

// ParseResponse reads the reply fields from a decoded frame.
func ParseResponse(in *Inbound) *Response {
	if in == nil {
		return nil
	}
	resp := &Response{
		MsgID:   in.MsgID(),
		Values:  in.Content[KeyValues],
		Content: in.Content,
	}
	_, resp.Success = in.Content[KeySuccess]

	if errObj, ok := in.Content[KeyError].(map[string]any); ok {
		e := &ResponseError{Available: errObj[KeyErrorAvailable]}
		if msg, ok := errObj[KeyErrorMessage]; ok {
			e.Message = fmt.Sprint(msg)
		}
		resp.Error = e
	}
	if extras, ok := in.Content[KeyExtras].(map[string]any); ok {
		resp.Extras = extras
	}
	return resp
}

// Output renders the human readable part of a reply: the error message and
// available options, or the extras message when there is no error.
func (r *Response) Output() string {
	if r == nil {
		return ""
	}
	var lines []string
	if r.Error != nil {
		if r.Error.Message != "" {
			lines = append(lines, r.Error.Message)
		}
		if r.Error.Available != nil {
			lines = append(lines, "Available options:", fmt.Sprint(r.Error.Available))
		}
	} else if msg, ok := r.Extras[KeyExtrasMessage]; ok {
		lines = append(lines, fmt.Sprint(msg))
	}
	return strings.Join(lines, "\n")
}

// Result returns the reply values, unwrapping single element lists.
func (r *Response) Result() any {
	if r == nil {
		return nil
	}
	if list, ok := r.Values.([]any); ok && len(list) == 1 {
		return list[0]
	}
	return r.Values
}
