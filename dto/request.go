package dto

import (
	"errors"
	"mime/multipart"
	"strings"
)

// ExtractRequest is the multipart upload accepted by the statement and
// receipt endpoints.
type ExtractRequest struct {
	File      *multipart.FileHeader `form:"file" binding:"required"`
	Kind      string                `form:"kind"`
	Languages string                `form:"languages"`
	Password  string                `form:"password"`
}

// Validate performs basic validation on the request
func (r *ExtractRequest) Validate() error {
	if r.File == nil {
		return ErrNoFile
	}
	if r.File.Size == 0 {
		return errors.New("uploaded file is empty")
	}
	if _, err := ParseFileKind(r.Kind); err != nil {
		return err
	}
	return nil
}

// LanguageList splits the comma separated languages field.
func (r *ExtractRequest) LanguageList() []string {
	var langs []string
	for _, l := range strings.Split(r.Languages, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
