package server

// Content is one item of a tool result: text, an image, or an
// embedded resource. The Type field discriminates on the wire.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"` // base64-encoded image payload
	MimeType string `json:"mimeType,omitempty"`

	Resource *ResourceContent `json:"resource,omitempty"`
}

// Result is the outcome of a tool invocation: an ordered sequence of
// content items returned as the success payload of tools/call.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextContent creates a text content item.
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// ImageContent creates an image content item from base64 data.
func ImageContent(data, mimeType string) Content {
	return Content{Type: "image", Data: data, MimeType: mimeType}
}

// EmbeddedResource creates a content item wrapping a resource.
func EmbeddedResource(rc ResourceContent) Content {
	return Content{Type: "resource", Resource: &rc}
}

// TextResult wraps a single string as a one-item text result, the
// common case for simple tools.
func TextResult(text string) *Result {
	return &Result{Content: []Content{TextContent(text)}}
}
