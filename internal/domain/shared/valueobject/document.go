package valueobject

import (
	"fmt"
	"strings"

	"github.com/billing/backend/internal/domain/shared"
)

// DocumentType classifies a Brazilian tax id by its length
type DocumentType string

const (
	DocumentTypeCPF  DocumentType = "CPF"  // 11-digit personal tax id
	DocumentTypeCNPJ DocumentType = "CNPJ" // 14-digit company tax id
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

// ErrInvalidDocumentLength is returned when a tax id has neither CPF nor CNPJ length
var ErrInvalidDocumentLength = shared.NewDomainError("INVALID_DOCUMENT", "Invalid document length")

// Document is a value object for a Brazilian tax id (CPF or CNPJ)
type Document struct {
	number  string
	docType DocumentType
}

// NewDocument parses a tax id, stripping any non-digit characters and
// classifying it by length.
func NewDocument(raw string) (Document, error) {
	clean := onlyDigits(raw)

	switch len(clean) {
	case cpfLength:
		return Document{number: clean, docType: DocumentTypeCPF}, nil
	case cnpjLength:
		return Document{number: clean, docType: DocumentTypeCNPJ}, nil
	default:
		return Document{}, ErrInvalidDocumentLength
	}
}

// Number returns the canonical digits
func (d Document) Number() string {
	return d.number
}

// Type returns the document classification
func (d Document) Type() DocumentType {
	return d.docType
}

// IsCPF returns true for a personal tax id
func (d Document) IsCPF() bool {
	return d.docType == DocumentTypeCPF
}

// IsCNPJ returns true for a company tax id
func (d Document) IsCNPJ() bool {
	return d.docType == DocumentTypeCNPJ
}

// Formatted returns the conventional grouped rendering:
// CPF 000.000.000-00, CNPJ 00.000.000/0000-00.
func (d Document) Formatted() string {
	n := d.number
	if d.IsCPF() {
		return fmt.Sprintf("%s.%s.%s-%s", n[0:3], n[3:6], n[6:9], n[9:11])
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", n[0:2], n[2:5], n[5:8], n[8:12], n[12:14])
}

// String returns the canonical digits
func (d Document) String() string {
	return d.number
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
