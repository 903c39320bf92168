package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
		wantErr  error
		anyErr   bool
	}{
		{name: "plain text", filename: "notes.txt", content: []byte("Paris is the capital."), want: "Paris is the capital."},
		{name: "upper-case extension", filename: "NOTES.TXT", content: []byte("x"), want: "x"},
		{name: "unsupported", filename: "report.docx", content: []byte("x"), wantErr: ErrUnsupportedType},
		{name: "corrupt pdf", filename: "broken.pdf", content: []byte("not a pdf"), anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(tt.filename, tt.content)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.pdf"))
	assert.True(t, Supported("a.PDF"))
	assert.True(t, Supported("a.txt"))
	assert.False(t, Supported("a.doc"))
	assert.False(t, Supported("pdf"))
}
