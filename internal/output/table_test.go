package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_AlignsAccentedText(t *testing.T) {
	tbl := NewTable(
		Column{Title: "Descrição"},
		Column{Title: "Valor", Align: Right},
		Column{Title: "Categoria"},
	)
	tbl.Append("Pão", "-5.00", "Padaria")
	tbl.Append("Salario", "1000.00", "Salario")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "Descrição    Valor  Categoria", lines[0])
	assert.Equal(t, "---------  -------  ---------", lines[1])
	assert.Equal(t, "Pão          -5.00  Padaria", lines[2])
	assert.Equal(t, "Salario    1000.00  Salario", lines[3])
}

func TestAppend_Truncates(t *testing.T) {
	tbl := NewTable(Column{Title: "Descrição", MaxWidth: 8}, Column{Title: "Valor"})
	tbl.Append("Compra no debito longa", "1.00", "ignored")
	tbl.Append("x")
	assert.Equal(t, 2, tbl.Len())

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	assert.Contains(t, buf.String(), "Compr...")
	assert.NotContains(t, buf.String(), "ignored")
}
