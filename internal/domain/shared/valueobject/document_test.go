package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantNumber string
		wantType   DocumentType
		wantErr    bool
	}{
		{name: "plain CPF", input: "12345678901", wantNumber: "12345678901", wantType: DocumentTypeCPF},
		{name: "formatted CPF", input: "123.456.789-01", wantNumber: "12345678901", wantType: DocumentTypeCPF},
		{name: "plain CNPJ", input: "12345678000195", wantNumber: "12345678000195", wantType: DocumentTypeCNPJ},
		{name: "formatted CNPJ", input: "12.345.678/0001-95", wantNumber: "12345678000195", wantType: DocumentTypeCNPJ},
		{name: "too short", input: "123456", wantErr: true},
		{name: "too long", input: "123456789012345", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "letters only", input: "abcdef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewDocument(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocumentLength)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, doc.Number())
			assert.Equal(t, tt.wantType, doc.Type())
		})
	}
}

func TestDocumentClassification(t *testing.T) {
	cpf, err := NewDocument("12345678901")
	require.NoError(t, err)
	assert.True(t, cpf.IsCPF())
	assert.False(t, cpf.IsCNPJ())

	cnpj, err := NewDocument("12345678000195")
	require.NoError(t, err)
	assert.True(t, cnpj.IsCNPJ())
	assert.False(t, cnpj.IsCPF())
}

func TestDocumentFormatted(t *testing.T) {
	cpf, err := NewDocument("12345678901")
	require.NoError(t, err)
	assert.Equal(t, "123.456.789-01", cpf.Formatted())

	cnpj, err := NewDocument("12345678000195")
	require.NoError(t, err)
	assert.Equal(t, "12.345.678/0001-95", cnpj.Formatted())
}
