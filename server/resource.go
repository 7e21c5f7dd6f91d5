package server

import "context"

// ResourceContent is the payload returned from reading a resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64 for binary resources
}

// ReadFunc produces the content of a resource.
type ReadFunc func(ctx context.Context, uri string) (*ResourceContent, error)

// Resource is a named, addressable piece of content a server exposes.
// The template registers none; the type exists so embedders can add
// their own alongside tools.
type Resource struct {
	uri         string
	name        string
	description string
	mimeType    string
	read        ReadFunc
}

// NewResource creates a resource with the given descriptor and reader.
func NewResource(uri, name, description, mimeType string, read ReadFunc) *Resource {
	return &Resource{
		uri:         uri,
		name:        name,
		description: description,
		mimeType:    mimeType,
		read:        read,
	}
}

// URI returns the resource's address.
func (r *Resource) URI() string { return r.uri }

// Name returns the display name.
func (r *Resource) Name() string { return r.name }

// Description returns the human-readable description.
func (r *Resource) Description() string { return r.description }

// MimeType returns the declared content type.
func (r *Resource) MimeType() string { return r.mimeType }

// Read produces the resource's current content.
func (r *Resource) Read(ctx context.Context) (*ResourceContent, error) {
	return r.read(ctx, r.uri)
}
