package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
)

// Request is a buffered API call. Bodies are kept in memory so the call can
// be issued again after a refresh.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	// Credential marks login and refresh calls. A 401 on them is final.
	Credential bool
}

func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path}
}

func NewJSONRequest(method, path string, v any) (*Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("client: encode %s %s: %w", method, path, err)
	}
	return &Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: "application/json",
	}, nil
}

func NewMultipartRequest(method, path string, form *Form) (*Request, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, fmt.Errorf("client: encode %s %s: %w", method, path, err)
	}
	return &Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: contentType,
	}, nil
}

// File is an in-memory upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field string
	file  File
}

// Form is a multipart/form-data body. Fields and files keep insertion order.
type Form struct {
	fields []formField
	files  []formFile
}

func (f *Form) Add(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

func (f *Form) AddFile(field string, file File) {
	f.files = append(f.files, formFile{field: field, file: file})
}

func (f *Form) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", err
		}
	}
	for _, ff := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ff.field, ff.file.Name))
		ct := ff.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(ff.file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
